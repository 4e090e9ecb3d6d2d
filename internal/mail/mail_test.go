package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/config"
)

func TestRenderer_PasswordReset(t *testing.T) {
	msg, err := NewRenderer().Render(TemplatePasswordReset, "jane@example.com", map[string]string{
		"Name":      "<Jane>",
		"Code":      "12345",
		"ExpiresAt": "2025-01-01 13:00 UTC",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Password Change Request", msg.Subject)
	assert.Contains(t, msg.HTML, "12345")
	assert.Contains(t, msg.HTML, "&lt;Jane&gt;")
	assert.Contains(t, msg.Text, "Hello <Jane>,")
	assert.Contains(t, msg.Text, "2025-01-01 13:00 UTC")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	_, err := NewRenderer().Render("nope", "a@example.com", nil)
	assert.Error(t, err)
}

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Job{ID: "1", To: "a@example.com"}))

	full, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(full, Job{ID: "2"}), context.DeadlineExceeded)

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", job.ID)

	empty, cancel2 := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel2()
	_, err = q.Dequeue(empty)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("App <app@example.com>", Message{
		To:      "jane@example.com",
		Subject: "Hi",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.Contains(t, raw, "From: App <app@example.com>\r\n")
	assert.Contains(t, raw, "To: jane@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "text/plain; charset=UTF-8\r\n\r\nhi\r\n")
	assert.Contains(t, raw, "text/html; charset=UTF-8\r\n\r\n<p>hi</p>\r\n")
	assert.True(t, strings.HasSuffix(raw, "--\r\n"))
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESMailer(t *testing.T) {
	fake := &fakeSES{}
	m := &sesMailer{client: fake, from: "no-reply@example.com", fromName: "Tickets"}

	require.NoError(t, m.Send(context.Background(), Message{To: "jane@example.com", Subject: "S", HTML: "<b>h</b>", Text: "t"}))
	assert.Equal(t, "Tickets <no-reply@example.com>", aws.ToString(fake.input.Source))
	assert.Equal(t, []string{"jane@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "<b>h</b>", aws.ToString(fake.input.Message.Body.Html.Data))
	assert.Equal(t, "t", aws.ToString(fake.input.Message.Body.Text.Data))

	fake.err = errors.New("throttled")
	assert.ErrorContains(t, m.Send(context.Background(), Message{To: "x@example.com"}), "throttled")
}

func TestNewSESMailer_Credentials(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config", "credentials"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDENV")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret")

	tests := []struct {
		name   string
		cfg    config.MailConfig
		wantID string
	}{
		{name: "default chain", cfg: config.MailConfig{SESRegion: "eu-west-1"}, wantID: "AKIDENV"},
		{name: "static keys", cfg: config.MailConfig{SESRegion: "eu-west-1", SESAccessKeyID: "AKIDSTATIC", SESSecretAccessKey: "static-secret"}, wantID: "AKIDSTATIC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := newSESMailer(context.Background(), tt.cfg)
			require.NoError(t, err)

			opts := m.client.(*ses.Client).Options()
			assert.Equal(t, "eu-west-1", opts.Region)
			require.NotNil(t, opts.Credentials)
			creds, err := opts.Credentials.Retrieve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, creds.AccessKeyID)
		})
	}
}

func TestResendMailer(t *testing.T) {
	var got resend.SendEmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "email-1"})
	}))
	defer server.Close()

	m := newResendMailer(config.MailConfig{ResendAPIKey: "re_test", From: "no-reply@example.com"}, zap.NewNop())
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	m.client.BaseURL = base

	require.NoError(t, m.Send(context.Background(), Message{To: "jane@example.com", Subject: "S", HTML: "<p>x</p>"}))
	assert.Equal(t, "no-reply@example.com", got.From)
	assert.Equal(t, []string{"jane@example.com"}, got.To)
	assert.Equal(t, "S", got.Subject)
}

func TestNewMailer(t *testing.T) {
	logger := zap.NewNop()

	m, err := NewMailer(config.MailConfig{Provider: config.MailProviderNoop}, logger)
	require.NoError(t, err)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@example.com"}))

	_, err = NewMailer(config.MailConfig{Provider: config.MailProviderSMTP}, logger)
	assert.Error(t, err)

	_, err = NewMailer(config.MailConfig{Provider: config.MailProviderResend}, logger)
	assert.Error(t, err)

	m, err = NewMailer(config.MailConfig{Provider: config.MailProviderSES, SESRegion: "us-east-1"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)

	_, err = NewMailer(config.MailConfig{Provider: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}
