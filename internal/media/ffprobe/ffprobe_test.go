package ffprobe

import (
	"context"
	"testing"
)

func TestDurationSecondsPrefersFormat(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Duration: "120.0"},
		},
		Format: Format{Duration: "123.45"},
	}
	if got := result.DurationSeconds(); got != 123.45 {
		t.Fatalf("unexpected duration: %v", got)
	}
}

func TestDurationSecondsFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "58.2"},
			{CodecType: "video", Duration: "59.9"},
		},
	}
	if got := result.DurationSeconds(); got != 59.9 {
		t.Fatalf("expected video stream duration, got %v", got)
	}

	audioOnly := Result{
		Streams: []Stream{{CodecType: "audio", Duration: "58.2"}},
	}
	if got := audioOnly.DurationSeconds(); got != 58.2 {
		t.Fatalf("expected any-stream fallback, got %v", got)
	}
}

func TestDurationSecondsUnknownIsZero(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", Duration: "bad"}},
		Format:  Format{Duration: "nope"},
	}
	if got := result.DurationSeconds(); got != 0 {
		t.Fatalf("expected zero for unparseable duration, got %v", got)
	}
}

func TestVideoStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{CodecType: "video", Width: 1080, Height: 1920},
		},
	}
	stream := result.VideoStream()
	if stream == nil {
		t.Fatal("expected a video stream")
	}
	if stream.Width != 1080 || stream.Height != 1920 {
		t.Fatalf("unexpected dimensions %dx%d", stream.Width, stream.Height)
	}

	if (Result{}).VideoStream() != nil {
		t.Fatal("expected nil for no streams")
	}
}

func TestDurationOfMissingBinary(t *testing.T) {
	if got := DurationOf(context.Background(),"ffprobe-that-does-not-exist", "/tmp/nothing.mp4"); got != 0 {
		t.Fatalf("expected zero on probe failure, got %v", got)
	}
}
