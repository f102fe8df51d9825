package replay

import (
	"context"
	"errors"
	"strings"

	"github.com/stillonearth/gymbridge/internal/app/ports"
	"github.com/stillonearth/gymbridge/internal/app/session"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const defaultLimit = 100

// UseCase lists the recorded transitions of an episode, newest first. With
// no explicit episode id it serves the currently active episode.
type UseCase struct {
	Episodes ports.EpisodeRepository
	Sessions *session.Tracker
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	episodeID := strings.TrimSpace(req.EpisodeID)
	if episodeID == "" {
		if u.Sessions == nil {
			return Response{}, ErrInvalidRequest
		}
		episodeID = u.Sessions.Current()
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	steps, err := u.Episodes.ListByEpisode(ctx, episodeID, limit)
	if err != nil {
		return Response{}, err
	}
	return Response{EpisodeID: episodeID, Steps: toDTO(steps)}, nil
}
