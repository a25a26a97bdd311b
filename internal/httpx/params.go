package httpx

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brightwater-dev/leadboard/internal/fetch"
)

// defaultRangeDays is the window served when the request names no dates.
const defaultRangeDays = 30

// parseQuery reads the dashboard filter parameters. Dates accept RFC 3339 or
// plain YYYY-MM-DD; a bare end date extends to the end of that day so the
// range stays inclusive. Missing dates default to the last 30 days, aligned
// to UTC day boundaries.
func parseQuery(r *http.Request) (fetch.Query, error) {
	q := r.URL.Query()

	now := time.Now().UTC()
	end := now.Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
	start := end.AddDate(0, 0, -defaultRangeDays).Truncate(24 * time.Hour)

	var err error
	if raw := q.Get("start"); raw != "" {
		if start, err = parseDate(raw, false); err != nil {
			return fetch.Query{}, fmt.Errorf("invalid start date %q", raw)
		}
	}
	if raw := q.Get("end"); raw != "" {
		if end, err = parseDate(raw, true); err != nil {
			return fetch.Query{}, fmt.Errorf("invalid end date %q", raw)
		}
	}
	if end.Before(start) {
		return fetch.Query{}, fmt.Errorf("end date precedes start date")
	}

	var excluded []string
	if raw := q.Get("excludeSources"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				excluded = append(excluded, name)
			}
		}
	}

	return fetch.Query{
		Start:           start,
		End:             end,
		ExcludedSources: excluded,
		ExcludeAgents:   q.Get("excludeAgents") == "true",
		ExcludeNoSource: q.Get("excludeNoSource") == "true",
	}, nil
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
