package main

import (
	"github.com/spf13/cobra"

	"github.com/nutrisense/store-service/internal/geo"
	"github.com/nutrisense/store-service/internal/handlers"
	"github.com/nutrisense/store-service/internal/recommend"
)

var recommendFlags struct {
	lat      float64
	lng      float64
	items    []string
	gender   string
	weightKg float64
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank stores for a shopping list",
	Long: `Rank every catalog store for a shopping list from the given location and
print the result as JSON, in the same shape the HTTP API returns.`,
	Example: `  store-service recommend --lat 40.7128 --lng -74.0060 --item milk --item eggs
  store-service recommend --lat 40.7128 --lng -74.0060 --item "whole milk" --gender female --weight-kg 60`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().Float64Var(&recommendFlags.lat, "lat", 0, "latitude of the shopper")
	recommendCmd.Flags().Float64Var(&recommendFlags.lng, "lng", 0, "longitude of the shopper")
	recommendCmd.Flags().StringArrayVar(&recommendFlags.items, "item", nil, "item to buy (repeatable)")
	recommendCmd.Flags().StringVar(&recommendFlags.gender, "gender", "", "gender used for the step estimate")
	recommendCmd.Flags().Float64Var(&recommendFlags.weightKg, "weight-kg", 0, "body weight used for the calorie estimate")
	_ = recommendCmd.MarkFlagRequired("lat")
	_ = recommendCmd.MarkFlagRequired("lng")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	origin := geo.Coordinate{Lat: recommendFlags.lat, Lng: recommendFlags.lng}
	if err := validateCoordinate(origin); err != nil {
		return err
	}

	result := stack.Recommend.Recommend(cmd.Context(), recommend.Request{
		Location: origin,
		Items:    recommendFlags.items,
		Gender:   recommendFlags.gender,
		WeightKg: recommendFlags.weightKg,
	})

	return printJSON(cmd.OutOrStdout(), handlers.NewRecommendResponse(result))
}
