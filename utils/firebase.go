package utils

import (
	"beautycita/config"
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMClient is nil when push is disabled.
var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client. Without a
// credentials file push notifications are disabled rather than fatal.
func FirebaseInit() {
	logger := GetLogger()
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		logger.Info("FIREBASE_CREDENTIALS_FILE not set, push notifications disabled")
		return
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		logger.Error("firebase: error initializing app", zap.Error(err))
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Error("firebase: error getting Messaging client", zap.Error(err))
		return
	}

	FCMClient = client
}
