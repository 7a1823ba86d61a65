// client.go
//
// Go client for the back-office API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of backoffice-propsdb.
// backoffice-propsdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// backoffice-propsdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with backoffice-propsdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package client is a Go client for the back-office API.
//
// [Client] mirrors the server routes one method per endpoint: resource definitions,
// properties and profiles, whole documents, and the targeted nested item routes.
// [Page] builds the list/view/edit/delete workflow of one back-office screen on top of it.
//
// Every non-2xx response is returned as an [*APIError] carrying the status and the
// decoded error envelope. Use [IsVersionConflict] and [IsNotFound] to branch on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response from the API
type APIError struct {
	Status       int
	Message      string
	Type         string
	VersionError bool
	Body         string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: status=%d, %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error: status=%d, body=%s", e.Status, e.Body)
}

// IsVersionConflict reports whether err is a 409 stale-version response
func IsVersionConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.VersionError || apiErr.Status == http.StatusConflict)
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client provides typed access to the back-office REST API.
// A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the API at baseURL (protocol and host, no /api suffix)
// authenticating with the bearer token
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs an HTTP request with the JSON and auth headers
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

// call performs a request and decodes a successful response into target
func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

// decodeResponse decodes the JSON response into target, or the error envelope into an APIError
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Body: string(raw)}

		var envelope struct {
			Message      string `json:"message"`
			Type         string `json:"type"`
			VersionError bool   `json:"versionError"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Message = envelope.Message
			apiErr.Type = envelope.Type
			apiErr.VersionError = envelope.VersionError
		}
		return apiErr
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func resourcePath(resource string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/api/")
	b.WriteString(url.PathEscape(resource))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func withVersion(path string, version uint64) string {
	if version == 0 {
		return path
	}
	return path + "?version=" + strconv.FormatUint(version, 10)
}

// Health reports the health of the server
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.call(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Definitions lists every resource the server serves
func (c *Client) Definitions(ctx context.Context) ([]Definition, error) {
	var defs []Definition
	if err := c.call(ctx, http.MethodGet, "/api/resources", nil, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// Definition returns the definition of one resource
func (c *Client) Definition(ctx context.Context, resource string) (*Definition, error) {
	var def Definition
	if err := c.call(ctx, http.MethodGet, "/api/resources/"+url.PathEscape(resource), nil, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// Me returns the caller's identity and role as the server sees it
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.call(ctx, http.MethodGet, "/api/profile/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Profiles lists the stored profiles
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.call(ctx, http.MethodGet, "/api/profile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SaveProfile creates or updates a profile
func (c *Client) SaveProfile(ctx context.Context, profile *Profile) (*Profile, error) {
	var saved Profile
	if err := c.call(ctx, http.MethodPost, "/api/profile", profile, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Properties lists the properties
func (c *Client) Properties(ctx context.Context) ([]Property, error) {
	var properties []Property
	if err := c.call(ctx, http.MethodGet, "/api/properties", nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// Property returns one property
func (c *Client) Property(ctx context.Context, id string) (*Property, error) {
	var property Property
	if err := c.call(ctx, http.MethodGet, "/api/properties/"+url.PathEscape(id), nil, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// SaveProperty creates or updates a property
func (c *Client) SaveProperty(ctx context.Context, property *Property) (*Property, error) {
	var saved Property
	if err := c.call(ctx, http.MethodPost, "/api/properties", property, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// List returns the documents of resource, limited to propertyID when it is not empty
func (c *Client) List(ctx context.Context, resource, propertyID string) ([]Record, error) {
	path := resourcePath(resource)
	if propertyID != "" {
		path += "?property_id=" + url.QueryEscape(propertyID)
	}

	var records []Record
	if err := c.call(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns one document
func (c *Client) Get(ctx context.Context, resource, id string) (Record, error) {
	var record Record
	if err := c.call(ctx, http.MethodGet, resourcePath(resource, id), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create stores a new document and returns it with its id and version
func (c *Client) Create(ctx context.Context, resource string, body Record) (Record, error) {
	var record Record
	if err := c.call(ctx, http.MethodPost, resourcePath(resource), body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Replace overwrites a document. A "version" key in body makes the write conditional.
func (c *Client) Replace(ctx context.Context, resource, id string, body Record) (Record, error) {
	var record Record
	if err := c.call(ctx, http.MethodPut, resourcePath(resource, id), body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a document. A non-zero version makes the delete conditional.
func (c *Client) Delete(ctx context.Context, resource, id string, version uint64) error {
	return c.call(ctx, http.MethodDelete, withVersion(resourcePath(resource, id), version), nil, nil)
}

// EnsureReport returns the report document of a property, creating an empty one if needed
func (c *Client) EnsureReport(ctx context.Context, resource, propertyID string) (Record, error) {
	var record Record
	if err := c.call(ctx, http.MethodPost, resourcePath(resource, "report", propertyID), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// itemInput is the body of the nested item routes
type itemInput struct {
	Version uint64 `json:"version,omitempty"`
	Item    Record `json:"item"`
}

// AppendItem adds item to the nested array field and returns the updated document
func (c *Client) AppendItem(ctx context.Context, resource, id, field string, item Record, version uint64) (Record, error) {
	var record Record
	err := c.call(ctx, http.MethodPost, resourcePath(resource, id, field), itemInput{Version: version, Item: item}, &record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ReplaceItem replaces the nested item addressed by ref, an item id or the index of an
// item without one
func (c *Client) ReplaceItem(ctx context.Context, resource, id, field, ref string, item Record, version uint64) (Record, error) {
	var record Record
	err := c.call(ctx, http.MethodPatch, resourcePath(resource, id, field, ref), itemInput{Version: version, Item: item}, &record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RemoveItem removes the nested item addressed by ref
func (c *Client) RemoveItem(ctx context.Context, resource, id, field, ref string, version uint64) (Record, error) {
	var record Record
	err := c.call(ctx, http.MethodDelete, withVersion(resourcePath(resource, id, field, ref), version), nil, &record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SetObject replaces the nested object field
func (c *Client) SetObject(ctx context.Context, resource, id, field string, object Record, version uint64) (Record, error) {
	var record Record
	err := c.call(ctx, http.MethodPut, resourcePath(resource, id, field), itemInput{Version: version, Item: object}, &record)
	if err != nil {
		return nil, err
	}
	return record, nil
}
