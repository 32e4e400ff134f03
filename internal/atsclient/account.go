package atsclient

import (
	"context"
	"fmt"

	"github.com/minboot/ats-web/internal/domain/model"
)

// Withdraw deletes the current user's account.
func (c *Client) Withdraw(ctx context.Context) error {
	return c.Delete(ctx, "/api/users/me", nil, WithEndpoint("users.withdraw"))
}

// UpdateProfile changes the given user's details.
func (c *Client) UpdateProfile(ctx context.Context, userID int64, upd model.ProfileUpdate) error {
	return c.Put(ctx, fmt.Sprintf("/api/users/%d", userID), upd, nil, WithEndpoint("users.update"))
}

// Ask sends a question to the assistant and returns its markdown answer.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	var ans model.ChatAnswer
	err := c.Post(ctx, "/api/chatbot/ask", model.ChatRequest{Message: message}, &ans,
		WithEndpoint("chatbot.ask"))
	return ans.Answer, err
}
