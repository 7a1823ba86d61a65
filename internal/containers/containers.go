// Package containers starts the backing services of the back-office API in
// Docker, for integration tests and for local development.
package containers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MariaDB credentials used by the started database container
const (
	DBDatabase     = "backoffice"
	DBUser         = "backoffice"
	DBPassword     = "backoffice"
	DBRootPassword = "rootpass"
)

// Endpoint is a started container and the host address its service is reachable on
type Endpoint struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Set holds the containers started by Start
type Set struct {
	Network *testcontainers.DockerNetwork
	MariaDB *Endpoint
	Mongo   *Endpoint
}

// Terminate stops every container of the set and removes its network
func (s *Set) Terminate(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if s.Mongo != nil {
		keep(s.Mongo.Container.Terminate(ctx))
	}
	if s.MariaDB != nil {
		keep(s.MariaDB.Container.Terminate(ctx))
	}
	if s.Network != nil {
		keep(s.Network.Remove(ctx))
	}
	return firstErr
}

// Env returns the server environment that points at the started containers
func (s *Set) Env() map[string]string {
	env := map[string]string{}
	if s.MariaDB != nil {
		env["DB_TYPE"] = "mariadb"
		env["DB_HOST"] = s.MariaDB.Host
		env["DB_PORT"] = s.MariaDB.Port
		env["DB_DATABASE"] = DBDatabase
		env["DB_USER"] = DBUser
		env["DB_PASSWORD"] = DBPassword
	}
	if s.Mongo != nil {
		env["DOCUMENT_STORE"] = "mongodb"
		env["MONGO_URI"] = s.Mongo.URI()
	}
	return env
}

// URI returns the mongodb:// connection string of a MongoDB endpoint
func (e *Endpoint) URI() string {
	return fmt.Sprintf("mongodb://%s:%s", e.Host, e.Port)
}

// Start starts MariaDB, and MongoDB too when withMongo is set, on a shared network
func Start(ctx context.Context, withMongo bool) (*Set, error) {
	set := &Set{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	set.Network = nw

	set.MariaDB, err = StartMariaDB(ctx, nw.Name)
	if err != nil {
		_ = set.Terminate(ctx)
		return nil, err
	}

	if withMongo {
		set.Mongo, err = StartMongo(ctx, nw.Name)
		if err != nil {
			_ = set.Terminate(ctx)
			return nil, err
		}
	}

	return set, nil
}

// StartMariaDB starts a MariaDB container holding an empty back-office database.
// An empty networkName uses the default bridge network.
func StartMariaDB(ctx context.Context, networkName string) (*Endpoint, error) {
	return start(ctx, networkName, "mariadb", "3306", testcontainers.ContainerRequest{
		Image: Images(false)[0],
		Env: map[string]string{
			"MARIADB_ROOT_PASSWORD": DBRootPassword,
			"MARIADB_DATABASE":      DBDatabase,
			"MARIADB_USER":          DBUser,
			"MARIADB_PASSWORD":      DBPassword,
		},
	}, 90*time.Second)
}

// StartMongo starts a MongoDB container
func StartMongo(ctx context.Context, networkName string) (*Endpoint, error) {
	return start(ctx, networkName, "mongo", "27017", testcontainers.ContainerRequest{
		Image: imageOr("MONGO_IMAGE", "mongo:7"),
	}, 60*time.Second)
}

func start(ctx context.Context, networkName, alias, port string, req testcontainers.ContainerRequest, timeout time.Duration) (*Endpoint, error) {
	tcpPort, err := nat.NewPort("tcp", port)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s port: %w", alias, err)
	}

	req.ExposedPorts = []string{string(tcpPort)}
	req.WaitingFor = wait.ForListeningPort(tcpPort).WithStartupTimeout(timeout)
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{networkName: {alias}}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", alias, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	mapped, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Endpoint{Container: container, Host: host, Port: mapped.Port()}, nil
}

func imageOr(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}
