// Command submissions-api serves the manifest submission HTTP API.
//
// Configuration comes from SUBMISSIONS_* environment variables:
//
//	SUBMISSIONS_LISTEN              listen address (default :8080)
//	SUBMISSIONS_STORE_DRIVER        memory | sqlite | postgres
//	SUBMISSIONS_SQLITE_PATH         sqlite database file
//	SUBMISSIONS_POSTGRES_DSN        postgres connection string
//	SUBMISSIONS_BLOB_DRIVER         fs | memory | s3
//	SUBMISSIONS_BLOB_FS_ROOT        filesystem blob root
//	SUBMISSIONS_TOLID_URL           ToLID service base URL
//	SUBMISSIONS_TOLID_API_KEY       ToLID service API key
//	SUBMISSIONS_STS_URL             specimen tracking service base URL
//	SUBMISSIONS_STS_API_KEY         specimen tracking service API key
//	SUBMISSIONS_ENA_TAXONOMY_URL    ENA taxonomy endpoint
//	SUBMISSIONS_ENA_SUBMISSION_URL  ENA drop-box endpoint
//	SUBMISSIONS_ENA_USER            ENA drop-box user
//	SUBMISSIONS_ENA_PASSWORD        ENA drop-box password
//	SUBMISSIONS_CONTACT_NAME        broker contact name
//	SUBMISSIONS_CONTACT_EMAIL       broker contact email
//
// The s3 blob driver additionally reads SUBMISSIONS_BLOB_S3_* and the AWS
// credential chain.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"tolsubmissions/internal/adapters/api"
	blobcore "tolsubmissions/internal/blob/core"
	"tolsubmissions/internal/core"
	"tolsubmissions/internal/ena"
	blobfs "tolsubmissions/internal/infra/blob/fs"
	blobmemory "tolsubmissions/internal/infra/blob/memory"
	blobs3 "tolsubmissions/internal/infra/blob/s3"
	"tolsubmissions/internal/infra/clients/enaapi"
	"tolsubmissions/internal/infra/clients/sts"
	"tolsubmissions/internal/infra/clients/tolid"
	"tolsubmissions/internal/infra/persistence/memory"
	"tolsubmissions/internal/infra/persistence/postgres"
	"tolsubmissions/internal/infra/persistence/sqlite"
	"tolsubmissions/pkg/domain"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SUBMISSIONS")
	v.AutomaticEnv()
	v.SetDefault("LISTEN", ":8080")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("BLOB_DRIVER", "fs")
	v.SetDefault("TOLID_URL", "https://id.tol.sanger.ac.uk/api/v2")
	v.SetDefault("CONTACT_NAME", "ToL Submissions")
	return v
}

func openStore(v *viper.Viper) (domain.PersistentStore, func(), error) {
	switch driver := v.GetString("STORE_DRIVER"); driver {
	case "memory":
		return memory.NewStore(), func() {}, nil
	case "sqlite":
		store, err := sqlite.NewStore(v.GetString("SQLITE_PATH"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := postgres.NewStore(v.GetString("POSTGRES_DSN"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func openBlobs(ctx context.Context, v *viper.Viper) (blobcore.Store, error) {
	switch driver := v.GetString("BLOB_DRIVER"); driver {
	case "memory":
		return blobmemory.New(), nil
	case "fs":
		return blobfs.New(v.GetString("BLOB_FS_ROOT"))
	case "s3":
		return blobs3.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

func run(logger *slog.Logger) error {
	v := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(v)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	blobs, err := openBlobs(ctx, v)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	naming := tolid.New(v.GetString("TOLID_URL"), v.GetString("TOLID_API_KEY"))
	registry := sts.New(v.GetString("STS_URL"), v.GetString("STS_API_KEY"))
	archive := enaapi.New(enaapi.Config{
		TaxonomyURL:   v.GetString("ENA_TAXONOMY_URL"),
		SubmissionURL: v.GetString("ENA_SUBMISSION_URL"),
		User:          v.GetString("ENA_USER"),
		Password:      v.GetString("ENA_PASSWORD"),
	})
	contact := ena.Contact{
		Name:  v.GetString("CONTACT_NAME"),
		Email: v.GetString("CONTACT_EMAIL"),
	}

	engine := core.NewValidationEngine(naming, archive)
	pipeline := core.NewPipeline(naming, registry, archive, contact)
	service := core.NewService(store, engine, pipeline)
	handler := api.NewHandler(service, blobs)

	server := &http.Server{
		Addr:              v.GetString("LISTEN"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", server.Addr,
			"store", v.GetString("STORE_DRIVER"),
			"blobs", blobs.Driver())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
