package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/punchctl/internal/punch"
)

// locationFlags accepts either --location "lat,lng" or --lat and --lng.
type locationFlags struct {
	location string
	lat, lng float64
}

func (l *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.location, "location", "", `current position as "lat,lng"`)
	cmd.Flags().Float64Var(&l.lat, "lat", 0, "current latitude")
	cmd.Flags().Float64Var(&l.lng, "lng", 0, "current longitude")
	cmd.MarkFlagsMutuallyExclusive("location", "lat")
	cmd.MarkFlagsMutuallyExclusive("location", "lng")
}

func (l *locationFlags) resolve(cmd *cobra.Command) (string, error) {
	if l.location != "" {
		lat, lng, err := punch.ParseLocation(l.location)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return punch.FormatLocation(lat, lng), nil
	}

	if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
		loc := punch.FormatLocation(l.lat, l.lng)
		if _, _, err := punch.ParseLocation(loc); err != nil {
			return "", fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return loc, nil
	}
	return "", fmt.Errorf("%w: a location is required (--location or --lat and --lng)", ErrUsage)
}

// listFlags are the search and paging flags of listing commands.
type listFlags struct {
	search string
	page   int
}

func (l *listFlags) register(cmd *cobra.Command, searchHelp string) {
	cmd.Flags().StringVarP(&l.search, "search", "s", "", searchHelp)
	cmd.Flags().IntVarP(&l.page, "page", "p", 1, "page number")
}

// pageView is the JSON form of one listing page.
type pageView[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}
