package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorWeightsSumToOne(t *testing.T) {
	for _, sector := range SupportedSectors() {
		adj := AdjustmentFor(sector)
		assert.InDelta(t, 1.0, adj.Weights.Sum(), 1e-6, "板块%s的权重和不为1", sector)
	}
}

func TestAdjustmentForUnknownSectorFallsBack(t *testing.T) {
	unknown := AdjustmentFor("Cryptowidgets")
	assert.Equal(t, AdjustmentFor(defaultSector), unknown)

	empty := AdjustmentFor("")
	assert.Equal(t, AdjustmentFor(defaultSector), empty)
}

func TestSectorAdjustmentProfiles(t *testing.T) {
	tech := AdjustmentFor("Technology")
	fin := AdjustmentFor("Financials")
	util := AdjustmentFor("Utilities")

	// 科技板块放宽估值容忍并侧重成长
	assert.Greater(t, tech.FundamentalMultiplier, 1.0)
	assert.Greater(t, tech.Weights.Growth, tech.Weights.Fundamental)

	// 金融板块收紧估值并侧重基本面
	assert.Less(t, fin.FundamentalMultiplier, 1.0)
	assert.Greater(t, fin.Weights.Fundamental, fin.Weights.Growth)

	// 公用事业收紧负债容忍
	assert.Less(t, util.QualityMultiplier, 1.0)
}

func TestAdjustmentForReturnsCopy(t *testing.T) {
	adj := AdjustmentFor("Technology")
	adj.Weights.Fundamental = 0.99

	assert.InDelta(t, 0.25, AdjustmentFor("Technology").Weights.Fundamental, 1e-9)
}
