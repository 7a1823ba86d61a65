package resources

// Definitions returns the back-office resources.
// Each entry replaces one hand-written admin page.
func Definitions() []Resource {
	fieldStaff := []string{RoleCAdmin, RoleAdmin, RolePropertyUser}

	return []Resource{
		{
			Name:           "site-visit-details",
			Title:          "site visit details",
			Kind:           KindRecord,
			PropertyScoped: true,
			Required:       []string{"visit_date", "visited_by"},
			Arrays: []Field{
				{Name: "observations", Fields: []string{"id", "area", "observation", "severity"}, Required: []string{"area", "observation"}},
				{Name: "checklist_items", Fields: []string{"id", "item", "status", "remarks"}, Required: []string{"item", "status"}},
				{Name: "follow_up_action_plan", Fields: []string{"id", "action", "responsible_person", "target_date", "status"}, Required: []string{"action", "responsible_person", "target_date"}},
			},
			Objects: []Field{
				{Name: "sign_off", Fields: []string{"signed_by", "designation", "signed_at"}, Required: []string{"signed_by"}},
			},
			EditRoles: fieldStaff,
		},
		{
			Name:           "cctv-audit-reports",
			Title:          "CCTV audit reports",
			Kind:           KindReport,
			PropertyScoped: true,
			Arrays: []Field{
				{Name: "cctv_audit_checklist", Fields: []string{"id", "camera_id", "camera_location", "status", "recording_days", "remarks"}, Required: []string{"camera_location", "status"}},
			},
		},
		{
			Name:           "fire-safety-reports",
			Title:          "fire safety reports",
			Kind:           KindReport,
			PropertyScoped: true,
			Arrays: []Field{
				{Name: "fire_safety_checklist", Fields: []string{"id", "equipment", "location", "status", "last_serviced", "remarks"}, Required: []string{"equipment", "status"}},
				{Name: "fire_drills", Fields: []string{"id", "drill_date", "conducted_by", "participants", "observations"}, Required: []string{"drill_date", "conducted_by"}},
			},
		},
		{
			Name:           "community-reports",
			Title:          "community reports",
			Kind:           KindReport,
			PropertyScoped: true,
			Arrays: []Field{
				{Name: "community_events", Fields: []string{"id", "event_name", "event_date", "attendance", "organizer"}, Required: []string{"event_name", "event_date"}},
				{Name: "resident_feedback", Fields: []string{"id", "resident_name", "unit", "feedback", "status"}, Required: []string{"resident_name", "feedback"}},
			},
		},
		{
			Name:           "inventory-reports",
			Title:          "inventory reports",
			Kind:           KindReport,
			PropertyScoped: true,
			Arrays: []Field{
				{Name: "inventory_items", Fields: []string{"id", "item_name", "category", "quantity", "unit", "reorder_level"}, Required: []string{"item_name", "quantity"}},
			},
		},
		{
			Name:           "procurement-reports",
			Title:          "procurement reports",
			Kind:           KindReport,
			PropertyScoped: true,
			Arrays: []Field{
				{Name: "procurement_categories", Fields: []string{"id", "category_name", "description", "budget"}, Required: []string{"category_name"}},
				{Name: "vendor_evaluations", Fields: []string{"id", "vendor_name", "criteria", "score", "evaluated_on"}, Required: []string{"vendor_name", "score"}},
			},
		},
		{
			Name:           "project-masters",
			Title:          "project masters",
			Kind:           KindRecord,
			PropertyScoped: true,
			Required:       []string{"project_name"},
			Arrays: []Field{
				{Name: "planning", Fields: []string{"id", "milestone", "start_date", "end_date", "owner"}, Required: []string{"milestone"}},
				{Name: "execution_tasks", Fields: []string{"id", "task_name", "assignee", "status", "due_date"}, Required: []string{"task_name", "status"}},
				{Name: "monitoring_kpis", Fields: []string{"id", "kpi_name", "target", "actual", "unit"}, Required: []string{"kpi_name", "target"}},
				{Name: "closure", Fields: []string{"id", "closure_item", "completed_on", "notes"}, Required: []string{"closure_item"}},
			},
			Objects: []Field{
				{Name: "summary", Fields: []string{"sponsor", "budget", "status"}},
			},
		},
		{
			Name:     "vendor-masters",
			Title:    "vendor masters",
			Kind:     KindRecord,
			Required: []string{"vendor_name"},
			Arrays: []Field{
				{Name: "vendor_evaluations", Fields: []string{"id", "evaluation_date", "score", "evaluator", "comments"}, Required: []string{"evaluation_date", "score"}},
			},
		},
		{
			Name:           "diesel-generators",
			Title:          "diesel generators",
			Kind:           KindRecord,
			PropertyScoped: true,
			Required:       []string{"generator_name", "capacity_kva"},
			Arrays: []Field{
				{Name: "run_logs", Fields: []string{"id", "run_date", "hours", "fuel_consumed", "operator"}, Required: []string{"run_date", "hours"}},
			},
		},
		{
			Name:           "work-permits",
			Title:          "work permits",
			Kind:           KindRecord,
			PropertyScoped: true,
			Required:       []string{"permit_type", "requested_by"},
			Arrays: []Field{
				{Name: "work_details", Fields: []string{"id", "description", "location", "start_time", "end_time"}, Required: []string{"description"}},
				{Name: "safety_checks", Fields: []string{"id", "check", "status"}, Required: []string{"check", "status"}},
				{Name: "approvals", Fields: []string{"id", "approver", "decision", "decided_at"}, Required: []string{"approver", "decision"}},
			},
			EditRoles: fieldStaff,
		},
	}
}

// Default returns the registry of the back-office resources
func Default() *Registry {
	reg, err := NewRegistry(Definitions()...)
	if err != nil {
		panic(err)
	}
	return reg
}
