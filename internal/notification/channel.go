package notification

import (
	"context"
	"errors"

	"github.com/stemsi/cyberassess-backend/internal/mailer"
	"github.com/stemsi/cyberassess-backend/internal/model"
)

// Channel delivers one notification for a submission.
type Channel interface {
	Name() string
	Send(ctx context.Context, s model.Submission) error
}

// Sender is the mail transport used by the mail channels.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// InternalChannel mails the operations team.
type InternalChannel struct {
	sender Sender
	to     string
}

// NewInternalChannel creates the internal channel addressed to to.
func NewInternalChannel(sender Sender, to string) *InternalChannel {
	return &InternalChannel{sender: sender, to: to}
}

func (c *InternalChannel) Name() string { return ChannelInternal }

func (c *InternalChannel) Send(ctx context.Context, s model.Submission) error {
	if c.to == "" {
		return errors.New("TO_EMAIL not configured")
	}
	msg, err := InternalMessage(s, c.to)
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, msg)
}

// UserChannel mails the respondent an acknowledgement.
type UserChannel struct {
	sender Sender
}

// NewUserChannel creates the respondent acknowledgement channel.
func NewUserChannel(sender Sender) *UserChannel {
	return &UserChannel{sender: sender}
}

func (c *UserChannel) Name() string { return ChannelUser }

func (c *UserChannel) Send(ctx context.Context, s model.Submission) error {
	msg, err := UserMessage(s)
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, msg)
}
