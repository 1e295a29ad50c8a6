package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/db"
)

const (
	MongoUsername = "user"
	MongoPassword = "password"
	MongoDatabase = "test-database"
	MongoOwner    = "0x00000000000000000000000000000000000000aa"

	// this version corresponds to docker tag for mongodb
	// it should be in sync with mongo version used in production
	mongoVersion = "7.0.5"
)

// StartMongo runs a mongodb container and returns a config pointing at it
// together with a cleanup function that MUST be called to remove the container
func StartMongo(queryPageLimit int64) (*config.DbConfig, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, err
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       ContainerName("mongo-integration-tests-db"),
		Repository: "mongo",
		Tag:        mongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + MongoUsername,
			"MONGO_INITDB_ROOT_PASSWORD=" + MongoPassword,
			"MONGO_INITDB_DATABASE=" + MongoDatabase,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := pool.Purge(resource); err != nil {
			fmt.Printf("failed to purge mongo container: %v\n", err)
		}
	}

	// get host port (randomly chosen) that is mapped to mongo port inside container
	hostPort := resource.GetPort("27017/tcp")
	cfg := &config.DbConfig{
		Type:           config.DbTypeMongo,
		Username:       MongoUsername,
		Password:       MongoPassword,
		DbName:         MongoDatabase,
		Address:        fmt.Sprintf("mongodb://localhost:%s/", hostPort),
		Owner:          MongoOwner,
		QueryPageLimit: queryPageLimit,
	}

	// mongo needs a moment before accepting authenticated connections
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := db.New(ctx, *cfg)
		if err != nil {
			return err
		}
		defer client.Close(ctx) //nolint:errcheck
		return client.Ping(ctx)
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return cfg, cleanup, nil
}
