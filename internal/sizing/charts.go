package sizing

import "github.com/Simplici0/juzely/internal/garment"

var shirtMeasurements = []Measurement{
	{Key: TotalLength, Letter: "A", Label: "Total Length", Unit: "cm"},
	{Key: ChestWidth, Letter: "B", Label: "Chest Width", Unit: "cm"},
	{Key: BottomWidth, Letter: "C", Label: "Bottom Width", Unit: "cm"},
	{Key: SleeveLength, Letter: "D", Label: "Sleeve Length", Unit: "cm"},
	{Key: Armhole, Letter: "E", Label: "Armhole", Unit: "cm"},
	{Key: SleeveOpening, Letter: "F", Label: "Sleeve Opening", Unit: "cm"},
	{Key: NeckRibLength, Letter: "G", Label: "Neck Rib Length", Unit: "cm"},
	{Key: NeckOpening, Letter: "H", Label: "Neck Opening", Unit: "cm"},
	{Key: ShoulderToShoulder, Letter: "I", Label: "Shoulder-to-Shoulder", Unit: "cm"},
}

var knitMeasurements = []Measurement{
	{Key: Chest, Letter: "A", Label: "Tour de poitrine", Unit: "cm"},
	{Key: Length, Letter: "B", Label: "Longueur", Unit: "cm"},
	{Key: Sleeve, Letter: "C", Label: "Longueur de manche", Unit: "cm"},
}

var hoodieMeasurements = []Measurement{
	{Key: Chest, Letter: "A", Label: "Tour de poitrine", Unit: "cm"},
	{Key: Length, Letter: "B", Label: "Longueur", Unit: "cm"},
	{Key: Sleeve, Letter: "C", Label: "Longueur de manche", Unit: "cm"},
	{Key: HoodHeight, Letter: "D", Label: "Hauteur de capuche", Unit: "cm"},
}

// Shirt-cut offsets are flat widths; knit offsets are circumferences.
//
// Placeholder product data: the source charts carry one baseline per garment
// and no grading rules, so every offset below is an estimate. Replace them
// with measured fit tables before quoting production orders.
var (
	shirtOversized = map[MeasurementKey]float64{
		TotalLength: 3, ChestWidth: 6, BottomWidth: 6, SleeveLength: 2,
		Armhole: 2, SleeveOpening: 1.5, ShoulderToShoulder: 6,
	}
	shirtSlim = map[MeasurementKey]float64{
		TotalLength: -1, ChestWidth: -3, BottomWidth: -3, SleeveLength: -1,
		Armhole: -1, SleeveOpening: -1, ShoulderToShoulder: -2,
	}
	shirtCropped = map[MeasurementKey]float64{
		TotalLength: -12, ChestWidth: 2, BottomWidth: 2,
	}
	knitOversized = map[MeasurementKey]float64{Chest: 12, Length: 3, Sleeve: 2, HoodHeight: 1}
	knitSlim      = map[MeasurementKey]float64{Chest: -6, Length: -1, Sleeve: -1}
)

func builtinCharts() map[garment.Type]chart {
	return map[garment.Type]chart{
		garment.TShirt: {
			measurements: shirtMeasurements,
			sizes:        StandardSizes,
			baseline: map[SizeLabel][]float64{
				XS: {65, 52, 52, 19, 23, 19, 2.5, 18.5, 51},
				S:  {67, 54, 54, 20, 23.5, 19.5, 2.5, 18.5, 53},
				M:  {69, 56, 56, 21, 24, 20, 2.5, 18.5, 55},
				L:  {71, 58, 58, 22, 24.5, 20.5, 2.5, 18.5, 57},
				XL: {73, 60, 60, 23, 25, 21, 2.5, 18.5, 59},
			},
			fits: []fitSpec{
				{fit: FitOversized, label: "Oversized Fit", offsets: shirtOversized},
				{fit: FitRegular, label: "Regular Fit"},
				{fit: FitSlim, label: "Slim Fit", offsets: shirtSlim},
				{fit: FitCustom, label: "Custom Fit"},
				{fit: FitCropped, label: "Cropped (1/2 Sleeve) Fit", offsets: shirtCropped},
			},
		},
		garment.Pull: {
			measurements: shirtMeasurements,
			sizes:        ExtendedSizes,
			baseline: map[SizeLabel][]float64{
				XXS: {68, 52, 52, 60, 24, 10, 3, 20, 50},
				XS:  {70, 54, 54, 61, 24.5, 10.5, 3, 20, 52},
				S:   {72, 56, 56, 62, 25, 11, 3, 20, 54},
				M:   {74, 58, 58, 63, 25.5, 11.5, 3, 20, 56},
				L:   {76, 60, 60, 64, 26, 12, 3, 20, 58},
				XL:  {78, 62, 62, 65, 26.5, 12.5, 3, 20, 60},
				XXL: {80, 64, 64, 66, 27, 13, 3, 20, 62},
			},
			fits: []fitSpec{
				{fit: FitOversized, label: "Oversized Fit", offsets: shirtOversized},
				{fit: FitRegular, label: "Regular Fit"},
				{fit: FitSlim, label: "Slim Fit", offsets: shirtSlim},
				{fit: FitCustom, label: "Custom Fit"},
				{fit: FitCropped, label: "Cropped Fit", offsets: shirtCropped},
			},
		},
		// Placeholder baseline: no long-sleeve chart exists in the source data.
		garment.LongSleeve: {
			measurements: shirtMeasurements,
			sizes:        StandardSizes,
			baseline: map[SizeLabel][]float64{
				XS: {66, 51, 51, 60, 22.5, 10, 2, 18, 46},
				S:  {68, 53, 53, 61, 23, 10.5, 2, 18, 48},
				M:  {70, 55, 55, 62, 23.5, 11, 2, 18, 50},
				L:  {72, 57, 57, 63, 24, 11.5, 2, 18, 52},
				XL: {74, 59, 59, 64, 24.5, 12, 2, 18, 54},
			},
			fits: []fitSpec{
				{fit: FitOversized, label: "Oversized Fit", offsets: shirtOversized},
				{fit: FitRegular, label: "Regular Fit"},
				{fit: FitSlim, label: "Slim Fit", offsets: shirtSlim},
				{fit: FitCustom, label: "Custom Fit"},
			},
		},
		garment.Crewneck: {
			measurements: knitMeasurements,
			sizes:        StandardSizes,
			baseline: map[SizeLabel][]float64{
				XS: {88, 64, 58},
				S:  {93, 67, 60},
				M:  {98, 70, 62},
				L:  {103, 73, 64},
				XL: {108, 76, 66},
			},
			fits: knitFits(),
		},
		garment.ZipHoodie: {
			measurements: knitMeasurements,
			sizes:        StandardSizes,
			baseline: map[SizeLabel][]float64{
				XS: {88, 68, 60},
				S:  {93, 71, 62},
				M:  {98, 74, 64},
				L:  {103, 77, 66},
				XL: {108, 80, 68},
			},
			fits: knitFits(),
		},
		// Placeholder baseline: no hoodie chart exists in the source data.
		garment.Hoodie: {
			measurements: hoodieMeasurements,
			sizes:        StandardSizes,
			baseline: map[SizeLabel][]float64{
				XS: {90, 66, 60, 33},
				S:  {95, 69, 62, 34},
				M:  {100, 72, 64, 35},
				L:  {105, 75, 66, 36},
				XL: {110, 78, 68, 37},
			},
			fits: knitFits(),
		},
	}
}

func knitFits() []fitSpec {
	return []fitSpec{
		{fit: FitSlim, label: "Slim", offsets: knitSlim},
		{fit: FitRegular, label: "Regular"},
		{fit: FitOversized, label: "Oversized", offsets: knitOversized},
		{fit: FitCustom, label: "Custom"},
	}
}
