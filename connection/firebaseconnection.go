package connection

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"

	"studybuddy/config"
)

type FirebaseClients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

func (f *FirebaseClients) Close() error {
	if f.Firestore != nil {
		return f.Firestore.Close()
	}
	return nil
}

// FBConnection initializes the Firebase app from the service account file and
// opens the clients the configuration asks for.
func FBConnection(ctx context.Context, cfg config.Config, logger *slog.Logger) (*FirebaseClients, error) {
	var fbConfig *firebase.Config
	if cfg.Firebase.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.Firebase.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	clients := &FirebaseClients{}
	if cfg.Storage.Driver == config.StorageFirestore {
		clients.Firestore, err = app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting Firestore client: %w", err)
		}
		logger.Info("Firestore connection successful")
	}
	if cfg.Auth.Mode == config.AuthFirebase {
		clients.Auth, err = app.Auth(ctx)
		if err != nil {
			_ = clients.Close()
			return nil, fmt.Errorf("error getting Auth client: %w", err)
		}
	}
	return clients, nil
}
