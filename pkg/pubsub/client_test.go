package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/freshcart-backend/pkg/config"
)

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "grocer-prod"}

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"short topic", c.topicResourceName("orders"), "projects/grocer-prod/topics/orders"},
		{"full topic", c.topicResourceName("projects/other/topics/orders"), "projects/other/topics/orders"},
		{"short subscription", c.subscriptionResourceName(" worker "), "projects/grocer-prod/subscriptions/worker"},
		{"empty", c.subscriptionResourceName(""), ""},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, tc.got)
		}
	}

	var nilClient *Client
	if nilClient.topicResourceName("orders") != "" {
		t.Fatal("expected nil client to produce empty name")
	}
}

func TestClientOptions(t *testing.T) {
	if got := len(clientOptions(config.GCPConfig{})); got != 0 {
		t.Fatalf("expected default credentials, got %d options", got)
	}
	if got := len(clientOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`})); got != 1 {
		t.Fatalf("expected json credentials option, got %d", got)
	}
	if got := len(clientOptions(config.GCPConfig{ApplicationCredentials: "/secrets/sa.json"})); got != 1 {
		t.Fatalf("expected file credentials option, got %d", got)
	}
}

func TestNewClientRequiresProjectAndTopic(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{NotificationTopic: "t"}, false, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, false, nil); err != errTopicRequired {
		t.Fatalf("expected topic error, got %v", err)
	}
}
