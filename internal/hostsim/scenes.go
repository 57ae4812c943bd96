package hostsim

import (
	"context"
	"time"

	"github.com/five82/typetune/internal/protocol"
)

// Scene is one selection state in a demo script. Nil means nothing is
// selected; an empty non-nil slice means a selection with no text layers.
type Scene []protocol.ResultEntry

// SampleScenes returns the demo script: a heading, a body stack, a
// selection without text, and no selection.
func SampleScenes() []Scene {
	return []Scene{
		{heading()},
		{body("12:7", "Inter Regular", 16), body("12:8", "Inter Regular", 14), body("12:9", "Inter Medium", 12)},
		{},
		nil,
	}
}

// Play pushes each scene in turn, waiting interval between them, and
// loops until ctx is cancelled.
func (h *Host) Play(ctx context.Context, interval time.Duration, scenes []Scene) error {
	if len(scenes) == 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; ; i = (i + 1) % len(scenes) {
		var err error
		if scenes[i] == nil {
			err = h.Deselect()
		} else {
			err = h.Select(scenes[i]...)
		}
		if err != nil {
			if ctx.Err() != nil || closedErr(err) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func heading() protocol.ResultEntry {
	return protocol.ResultEntry{
		NodeID:        "4:21",
		FontInfo:      "Playfair Display Bold",
		IsApproximate: true,
		FontSize:      48,
		Before:        protocol.BeforeValues{LineHeight: "AUTO", LetterSpacing: "0%"},
		After: protocol.AfterValues{
			LineHeight:           53,
			LineHeightPercent:    110,
			LineHeightRaw:        52.8,
			LetterSpacing:        -0.96,
			LetterSpacingEm:      -0.02,
			LetterSpacingPercent: -2,
		},
	}
}

func body(id, font string, size float64) protocol.ResultEntry {
	lh := size * 1.5
	ls := size * 0.005
	return protocol.ResultEntry{
		NodeID:   id,
		FontInfo: font,
		FontSize: size,
		Before:   protocol.BeforeValues{LineHeight: "AUTO", LetterSpacing: "0%"},
		After: protocol.AfterValues{
			LineHeight:           lh,
			LineHeightPercent:    150,
			LineHeightRaw:        lh,
			LetterSpacing:        ls,
			LetterSpacingEm:      0.005,
			LetterSpacingPercent: 0.5,
		},
	}
}
