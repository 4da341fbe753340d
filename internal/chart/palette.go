package chart

import "image/color"

// tableau20 is the Tableau 20 qualitative palette. Even entries are the
// saturated colours, odd entries their light companions.
var tableau20 = [20]color.RGBA{
	{31, 119, 180, 255}, {174, 199, 232, 255}, {255, 127, 14, 255}, {255, 187, 120, 255},
	{44, 160, 44, 255}, {152, 223, 138, 255}, {214, 39, 40, 255}, {255, 152, 150, 255},
	{148, 103, 189, 255}, {197, 176, 213, 255}, {140, 86, 75, 255}, {196, 156, 148, 255},
	{227, 119, 194, 255}, {247, 182, 210, 255}, {127, 127, 127, 255}, {199, 199, 199, 255},
	{188, 189, 34, 255}, {219, 219, 141, 255}, {23, 190, 207, 255}, {158, 218, 229, 255},
}

// bandColor is shared by the upper and lower band lines.
const bandColor = 14

// SeriesColor returns the colour of the rank-th symbol line, skipping the
// light half of the palette.
func SeriesColor(rank int) color.RGBA {
	return tableau20[(rank*2)%len(tableau20)]
}

// BandColor returns the colour of both band lines.
func BandColor() color.RGBA {
	return tableau20[bandColor]
}
