// Package spotify реализует клиент для работы с Spotify Web API
// от имени пользователя.
package spotify

import (
	"context"
	"fmt"
	"strings"

	"runmix/internal/model"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client представляет клиент Spotify API, работающий с токенами
// конкретного пользователя; refresh token обновляется автоматически
type Client struct {
	auth   *spotifyauth.Authenticator
	logger *zap.Logger
}

// NewClient создает новый Spotify клиент
func NewClient(clientID, clientSecret string, logger *zap.Logger) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
	)

	logger.Info("Spotify client created successfully")

	return &Client{
		auth:   auth,
		logger: logger,
	}, nil
}

// userClient создает Spotify клиент с токенами пользователя
func (c *Client) userClient(ctx context.Context, auth *model.Authentication) *spotify.Client {
	token := &oauth2.Token{
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		Expiry:       auth.ExpiresAt,
		TokenType:    "Bearer",
	}

	return spotify.New(c.auth.Client(ctx, token))
}

// CheckToken проверяет работоспособность токена пользователя,
// запрашивая его профиль
func (c *Client) CheckToken(ctx context.Context, auth *model.Authentication) error {
	if _, err := c.userClient(ctx, auth).CurrentUser(ctx); err != nil {
		return fmt.Errorf("spotify token check failed: %w", err)
	}
	return nil
}

// SearchTrack ищет трек по исполнителю и названию; nil без ошибки,
// если ничего не найдено
func (c *Client) SearchTrack(ctx context.Context, auth *model.Authentication, artist, title string) (*TrackMatch, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)

	results, err := c.userClient(ctx, auth).Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		c.logger.Debug("No spotify match for track",
			zap.String("artist", artist),
			zap.String("title", title))
		return nil, nil
	}

	track := results.Tracks.Tracks[0]
	matchArtist := artist
	if len(track.Artists) > 0 {
		matchArtist = track.Artists[0].Name
	}

	return &TrackMatch{
		URI:    string(track.URI),
		Artist: matchArtist,
		Title:  track.Name,
	}, nil
}

// CreatePlaylist создает приватный плейлист в аккаунте пользователя
// и возвращает его Spotify ID
func (c *Client) CreatePlaylist(ctx context.Context, auth *model.Authentication, name, description string) (string, error) {
	playlist, err := c.userClient(ctx, auth).CreatePlaylistForUser(ctx, auth.ExternalID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to create spotify playlist: %w", err)
	}

	c.logger.Info("Created spotify playlist",
		zap.String("spotify_id", string(playlist.ID)),
		zap.String("name", name))

	return string(playlist.ID), nil
}

// ReplacePlaylistTracks заменяет содержимое плейлиста указанными треками
func (c *Client) ReplacePlaylistTracks(ctx context.Context, auth *model.Authentication, spotifyID string, uris []string) error {
	trackIDs := make([]spotify.ID, 0, len(uris))
	for _, uri := range uris {
		trackIDs = append(trackIDs, spotify.ID(strings.TrimPrefix(uri, "spotify:track:")))
	}

	if err := c.userClient(ctx, auth).ReplacePlaylistTracks(ctx, spotify.ID(spotifyID), trackIDs...); err != nil {
		return fmt.Errorf("failed to replace spotify playlist tracks: %w", err)
	}

	return nil
}

// FollowPlaylist подписывает пользователя на плейлист
func (c *Client) FollowPlaylist(ctx context.Context, auth *model.Authentication, spotifyID string) error {
	if err := c.userClient(ctx, auth).FollowPlaylist(ctx, spotify.ID(spotifyID), false); err != nil {
		return fmt.Errorf("failed to follow spotify playlist: %w", err)
	}
	return nil
}

// UnfollowPlaylist отписывает пользователя от плейлиста
func (c *Client) UnfollowPlaylist(ctx context.Context, auth *model.Authentication, spotifyID string) error {
	if err := c.userClient(ctx, auth).UnfollowPlaylist(ctx, spotify.ID(spotifyID)); err != nil {
		return fmt.Errorf("failed to unfollow spotify playlist: %w", err)
	}
	return nil
}
