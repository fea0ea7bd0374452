package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutrisense/store-service/internal/geo"
	"github.com/nutrisense/store-service/internal/ranking"
)

var distanceFlags struct {
	from string
	to   string
}

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Resolve the distance between two points",
	Long: `Resolve the travel distance between two points the way recommendations do:
the routing service first, the great-circle estimate when it fails.`,
	Example: `  store-service distance --from 40.7128,-74.0060 --to 40.7306,-73.9352`,
	Args:    cobra.NoArgs,
	RunE:    runDistance,
}

func init() {
	rootCmd.AddCommand(distanceCmd)
	distanceCmd.Flags().StringVar(&distanceFlags.from, "from", "", "origin as lat,lng")
	distanceCmd.Flags().StringVar(&distanceFlags.to, "to", "", "destination as lat,lng")
	_ = distanceCmd.MarkFlagRequired("from")
	_ = distanceCmd.MarkFlagRequired("to")
}

func runDistance(cmd *cobra.Command, args []string) error {
	from, err := parseCoordinate(distanceFlags.from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseCoordinate(distanceFlags.to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	d := stack.Resolver.Resolve(cmd.Context(), from, to)
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"distance_km":     ranking.Round(d.Km, 2),
		"measured":        d.Measured,
		"fallback_reason": d.Reason,
	})
}

// parseCoordinate parses "lat,lng".
func parseCoordinate(s string) (geo.Coordinate, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q", lngStr)
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	return c, validateCoordinate(c)
}

func validateCoordinate(c geo.Coordinate) error {
	if !c.Valid() {
		return fmt.Errorf("coordinate %s out of range", c)
	}
	return nil
}
