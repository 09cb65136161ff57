package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ErrInvalidToken is returned when Discord rejects an access token
var ErrInvalidToken = errors.New("invalid discord access token")

// Identity is the authenticated member making a request
type Identity struct {
	UserID   int64
	Username string
}

// IdentityProvider resolves a Discord OAuth access token to a member
type IdentityProvider interface {
	Resolve(ctx context.Context, accessToken string) (*Identity, error)
}

// DiscordIdentityProvider resolves tokens against the Discord API
type DiscordIdentityProvider struct{}

// NewDiscordIdentityProvider creates a provider calling Discord's current-user endpoint
func NewDiscordIdentityProvider() *DiscordIdentityProvider {
	return &DiscordIdentityProvider{}
}

// Resolve looks up the user owning accessToken
func (p *DiscordIdentityProvider) Resolve(ctx context.Context, accessToken string) (*Identity, error) {
	session, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	user, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == 401 {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve discord user: %w", err)
	}

	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid discord user id %q: %w", user.ID, err)
	}

	return &Identity{UserID: id, Username: user.Username}, nil
}
