package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

var (
	genBrandBasePrice = []struct {
		name  string
		price int
	}{
		{"Apple", 95000},
		{"Samsung", 45000},
		{"OnePlus", 42000},
		{"Xiaomi", 25000},
		{"Vivo", 23000},
		{"Oppo", 24000},
		{"Realme", 22000},
		{"Motorola", 26000},
		{"Infinix", 18000},
		{"Tecno", 17000},
	}

	genRegions = []string{
		"Delhi", "Maharashtra", "Karnataka", "Gujarat", "Tamil Nadu",
		"Telangana", "West Bengal", "Uttar Pradesh", "Madhya Pradesh", "Bihar",
	}
	genChannels   = []string{"Online", "Retail", "Wholesale"}
	genRAM        = []string{"4GB", "6GB", "8GB", "12GB", "16GB"}
	genStorage    = []string{"64GB", "128GB", "256GB", "512GB"}
	genCamera     = []string{"48MP", "64MP", "108MP", "200MP"}
	genBattery    = []string{"4000mAh", "4300mAh", "4500mAh", "5000mAh", "5500mAh"}
	genProcessors = []string{
		"Snapdragon 695", "Snapdragon 7 Gen 1", "Snapdragon 8 Gen 1", "Snapdragon 8 Gen 2",
		"Dimensity 1080", "Dimensity 8200", "A15 Bionic", "A16 Bionic", "A17 Pro",
	}
	genAndroid = []string{"Android 13", "Android 14"}
	genIOS     = []string{"iOS 16", "iOS 17"}
	genDisplay = []string{`6.1"`, `6.4"`, `6.7"`, `6.8"`}
	genYears   = []int{2022, 2023, 2024, 2025}
)

// RegionsPerModel is how many distinct regions each generated model sells in.
const RegionsPerModel = 5

// Generator produces synthetic sales datasets for demos and load tests.
type Generator struct {
	rng    *rand.Rand
	logger *utils.Logger
}

func NewGenerator(seed int64, logger *utils.Logger) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), logger: logger}
}

// Generate returns exactly rows raw sale rows. Models are spread evenly
// across brands and each model sells in RegionsPerModel distinct regions.
func (g *Generator) Generate(rows int) []*models.RawSaleRow {
	if rows <= 0 {
		return nil
	}
	perBrand := (rows + len(genBrandBasePrice)*RegionsPerModel - 1) / (len(genBrandBasePrice) * RegionsPerModel)

	seen := utils.NewKeySet()
	out := make([]*models.RawSaleRow, 0, rows)
	for idx := 1; idx <= perBrand && len(out) < rows; idx++ {
		for _, b := range genBrandBasePrice {
			name := fmt.Sprintf("%s-%d", strings.ToUpper(b.name[:3]), 100+idx)
			if !seen.Add(b.name, name) {
				continue
			}
			out = append(out, g.modelRows(b.name, name, b.price)...)
		}
	}
	if len(out) > rows {
		out = out[:rows]
	}

	g.logger.Info("[generator] Generated %d rows across %d models", len(out), seen.Size())
	return out
}

func (g *Generator) modelRows(brand, model string, basePrice int) []*models.RawSaleRow {
	ramIdx := g.rng.Intn(len(genRAM))
	storageIdx := g.rng.Intn(len(genStorage))
	osChoices := genAndroid
	if brand == "Apple" {
		osChoices = genIOS
	}

	// steps of 500 in [-3000, 3500]
	jitter := -3000 + 500*g.rng.Intn(14)
	price := basePrice + (ramIdx+storageIdx)*1500 + jitter

	spec := models.RawSaleRow{
		Brand:       brand,
		Model:       model,
		RAM:         genRAM[ramIdx],
		Storage:     genStorage[storageIdx],
		Camera:      pick(g.rng, genCamera),
		Battery:     pick(g.rng, genBattery),
		Processor:   pick(g.rng, genProcessors),
		OS:          pick(g.rng, osChoices),
		DisplaySize: pick(g.rng, genDisplay),
		Price:       strconv.Itoa(price),
		Year:        strconv.Itoa(genYears[g.rng.Intn(len(genYears))]),
	}

	perm := g.rng.Perm(len(genRegions))[:RegionsPerModel]
	rows := make([]*models.RawSaleRow, 0, RegionsPerModel)
	for _, ri := range perm {
		row := spec
		row.Region = genRegions[ri]
		row.Channel = pick(g.rng, genChannels)
		row.UnitsSold = strconv.Itoa(2000 + g.rng.Intn(18001))
		rows = append(rows, &row)
	}
	return rows
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
