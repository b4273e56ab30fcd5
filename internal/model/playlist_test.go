package model

import "testing"

func TestPlaylistStatus_IsValid(t *testing.T) {
	tests := []struct {
		status PlaylistStatus
		want   bool
	}{
		{StatusProcessing, true},
		{StatusReady, true},
		{StatusGeneratingCover, true},
		{PlaylistStatus("done"), false},
		{PlaylistStatus(""), false},
	}

	for _, tt := range tests {
		if got := tt.status.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPlaylist_EligibleForReprocessing(t *testing.T) {
	tests := []struct {
		name     string
		playlist Playlist
		want     bool
	}{
		{name: "ready and unlocked", playlist: Playlist{Status: StatusReady}, want: true},
		{name: "processing", playlist: Playlist{Status: StatusProcessing}, want: false},
		{name: "generating cover", playlist: Playlist{Status: StatusGeneratingCover}, want: false},
		{name: "ready but locked", playlist: Playlist{Status: StatusReady, Locked: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.playlist.EligibleForReprocessing(); got != tt.want {
				t.Errorf("EligibleForReprocessing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaylist_EligibleForCoverRegeneration(t *testing.T) {
	tests := []struct {
		name     string
		playlist Playlist
		want     bool
	}{
		{name: "ready with prompt", playlist: Playlist{Status: StatusReady, CoverPrompt: "neon gym"}, want: true},
		{name: "ready without prompt", playlist: Playlist{Status: StatusReady}, want: false},
		{name: "locked with prompt", playlist: Playlist{Status: StatusReady, Locked: true, CoverPrompt: "neon gym"}, want: false},
		{name: "processing with prompt", playlist: Playlist{Status: StatusProcessing, CoverPrompt: "neon gym"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.playlist.EligibleForCoverRegeneration(); got != tt.want {
				t.Errorf("EligibleForCoverRegeneration() = %v, want %v", got, tt.want)
			}
		})
	}
}
