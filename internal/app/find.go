package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"killpath/internal/listing"
	"killpath/internal/matcher"
	"killpath/internal/source"
)

// Find lists the processes running the executable at path without
// terminating them. A target that is not running yields an empty result,
// not an error.
func (a *App) Find(ctx context.Context, path string) (FindResult, error) {
	res := FindResult{Path: path, Image: source.ImageName(path)}

	if _, err := a.stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return res, fmt.Errorf("%w: %w", ErrInaccessible, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.listingTimeout)
	defer cancel()

	raw, err := a.source.Listing(ctx, res.Image)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrListing, err)
	}
	a.log.Debugw("listing collected", "path", path, "image", res.Image, "bytes", len(raw))

	records, err := listing.Parse(raw)
	if errors.Is(err, listing.ErrNoHeader) {
		a.log.Debugw("listing has no header", "image", res.Image)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrListing, err)
	}

	res.Records = matcher.Matches(path, records)
	res.PIDs = matcher.Select(path, records)
	a.log.Debugw("listing matched", "path", path, "records", len(records), "matches", len(res.Records), "pids", res.PIDs)
	return res, nil
}
