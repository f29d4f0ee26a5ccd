package media

import "context"

//go:generate mockgen -source=interface.go -destination=../mocks/media/mock_media.go -package=mock_media

// Downloader fetches the contents of an audio file.
type Downloader interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Preloader warms the audio of an item about to be shown. Preload must
// return immediately.
type Preloader interface {
	Preload(key string)
}

// Player plays the audio of a key.
type Player interface {
	Play(ctx context.Context, key string) error
}
