package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/imagewatch/internal/repository"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNotifier_Send(t *testing.T) {
	client := &fakeSES{}
	n := NewNotifierWithClient(client)

	err := n.Send(context.Background(), repository.Notification{
		To:      "to@example.com",
		From:    "from@example.com",
		Subject: "Report: Thu Oct 15 2026, 3 matches",
		Body:    "<div></div>",
	})
	require.NoError(t, err)

	in := client.input
	assert.Equal(t, "from@example.com", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"to@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Report: Thu Oct 15 2026, 3 matches", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "<div></div>", aws.ToString(in.Content.Simple.Body.Html.Data))
}

func TestNotifier_SendError(t *testing.T) {
	cause := errors.New("throttled")
	n := NewNotifierWithClient(&fakeSES{err: cause})

	err := n.Send(context.Background(), repository.Notification{To: "a", From: "b"})
	assert.ErrorIs(t, err, repository.ErrSend)
	assert.ErrorIs(t, err, cause)
}
