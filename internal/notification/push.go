package notification

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"rental-ledger-backend/internal/domain"
)

// Messenger is the part of the FCM client the push channel uses
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type pushChannel struct {
	client      Messenger
	topicPrefix string
}

// NewPushChannel publishes to one FCM topic per user; devices subscribe to
// "<prefix><userID>" when the user signs in.
func NewPushChannel(ctx context.Context, credentialsFile, topicPrefix string) (Channel, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return NewPushChannelWithClient(client, topicPrefix), nil
}

func NewPushChannelWithClient(client Messenger, topicPrefix string) Channel {
	return &pushChannel{client: client, topicPrefix: topicPrefix}
}

func (c *pushChannel) Name() string { return "fcm" }

func (c *pushChannel) Deliver(ctx context.Context, recipient *domain.User, n domain.Notification) error {
	data := map[string]string{
		"type": string(n.Type),
		"url":  n.URL,
	}
	for k, v := range n.Attributes {
		data[k] = v
	}

	_, err := c.client.Send(ctx, &messaging.Message{
		Topic: c.topicPrefix + strconv.FormatInt(recipient.ID, 10),
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}
