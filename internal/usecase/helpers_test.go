package usecase_test

import (
	"io"
	"log/slog"
	"time"

	"toggl-mcp/internal/domain"
	"toggl-mcp/internal/ports/portstest"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

// 2025-06-10 12:00 IST, 06:30 UTC.
var now = time.Date(2025, 6, 10, 12, 0, 0, 0, ist)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConv() *timeconv.Converter {
	return timeconv.NewWithClock(ist, func() time.Time { return now })
}

func resolverFor(fake *portstest.Toggl) *resolve.Resolver {
	return &resolve.Resolver{Toggl: fake, DefaultWorkspaceID: 1}
}

func dur(s int64) *int64 { return domain.Ptr(s) }
