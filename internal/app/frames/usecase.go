package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/stillonearth/gymbridge/internal/app/ports"
)

// ErrNoFrames reports that no agent has published a visual observation yet,
// or rendering is disabled for this environment.
var ErrNoFrames = errors.New("no visual observations published")

// UseCase tiles the per-agent frames horizontally into a single PNG, one
// agent-width column per agent, matching the layout RL-side decoders expect.
type UseCase struct {
	Env         ports.Environment
	FrameWidth  int
	FrameHeight int
}

func (u UseCase) Execute(_ context.Context) ([]byte, error) {
	agentFrames := u.Env.Frames()
	published := false
	for _, f := range agentFrames {
		if f != nil {
			published = true
			break
		}
	}
	if !published {
		return nil, ErrNoFrames
	}

	tiled := image.NewRGBA(image.Rect(0, 0, u.FrameWidth*len(agentFrames), u.FrameHeight))
	for i, frame := range agentFrames {
		if frame == nil {
			continue
		}
		offset := image.Rect(i*u.FrameWidth, 0, (i+1)*u.FrameWidth, u.FrameHeight)
		draw.Draw(tiled, offset, frame, frame.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, tiled); err != nil {
		return nil, fmt.Errorf("encode visual observations: %w", err)
	}
	return buf.Bytes(), nil
}
