// Package spotify реализует клиент для работы с Spotify Web API.
package spotify

// TrackMatch представляет трек, найденный поиском в Spotify
type TrackMatch struct {
	URI    string `json:"uri"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
}
