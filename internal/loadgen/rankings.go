package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// fetchRankings retrieves the current rankings for one kind, viewed as the
// given user.
func fetchRankings(ctx context.Context, client *httpClient, baseURL, kind, viewer string) (Rankings, error) {
	url := fmt.Sprintf("%s/rankings/%s?viewer=%s", baseURL, kind, viewer)

	resp, err := client.get(ctx, url)
	if err != nil {
		return Rankings{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Rankings{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != statusOK {
		return Rankings{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var view Rankings
	if err := json.Unmarshal(body, &view); err != nil {
		return Rankings{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return view, nil
}

// verifyBoard checks the structural invariants of one rankings view: the
// top list is score-descending, ranks are sequential from 1, and the
// viewer's own row is consistent with the top list when present in it.
func verifyBoard(kind string, view Rankings, viewer string) error {
	for i, entry := range view.TopList {
		if entry.Rank != i+1 {
			return fmt.Errorf("%s: entry %d has rank %d, want %d", kind, i, entry.Rank, i+1)
		}
		if i > 0 && entry.Score > view.TopList[i-1].Score {
			return fmt.Errorf("%s: entry %d (%.2f) outranks entry %d (%.2f)",
				kind, i, entry.Score, i-1, view.TopList[i-1].Score)
		}
	}

	if view.Myself != nil {
		if view.Myself.UserID != viewer {
			return fmt.Errorf("%s: myself row is %s, want %s", kind, view.Myself.UserID, viewer)
		}
		for _, entry := range view.TopList {
			if entry.UserID == viewer && entry.Rank != view.Myself.Rank {
				return fmt.Errorf("%s: myself rank %d disagrees with top list rank %d",
					kind, view.Myself.Rank, entry.Rank)
			}
		}
	}
	return nil
}

// verifyAllBoards fetches and verifies every kind's current board.
func verifyAllBoards(ctx context.Context, config *Config, events []Event, stats *Stats) error {
	client := newHTTPClient(config.Timeout)

	// Pick an arbitrary submitted user as the viewer for the self row.
	viewer := ""
	if len(events) > 0 {
		viewer = events[0].UserID
	}

	for _, kind := range kinds {
		view, err := fetchRankings(ctx, client, config.BaseURL, kind, viewer)
		if err != nil {
			return fmt.Errorf("fetch %s rankings: %w", kind, err)
		}
		if err := verifyBoard(kind, view, viewer); err != nil {
			return err
		}
		stats.BoardsVerified++
		log.Printf("board %s verified: %d entries listed", kind, len(view.TopList))

		if config.Verbose {
			top := len(view.TopList)
			if top > 10 {
				top = 10
			}
			for i := 0; i < top; i++ {
				entry := view.TopList[i]
				log.Printf("   %d. %s - score: %.2f", entry.Rank, entry.UserID, entry.Score)
			}
		}
	}
	return nil
}
