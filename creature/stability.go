package creature

import "github.com/fluidlife/biosim/config"

// FinalizeStability runs sub-phase 6: detect over-stretched springs and
// excessive body span, advance the reproduction cooldown clock, and decay
// the failed-reproduction penalty counter.
func (c *Creature) FinalizeStability(cfg *config.Config) {
	maxStretch := float32(cfg.Physics.MaxStretchFactor)
	for _, s := range c.Springs {
		dist := c.Points[s.P1].Pos.Sub(c.Points[s.P2].Pos).Len()
		if dist > s.RestLength*maxStretch {
			c.Unstable = true
			break
		}
	}

	if len(c.Points) > 2 {
		minX, minY := c.Points[0].Pos.X, c.Points[0].Pos.Y
		maxX, maxY := minX, minY
		for _, p := range c.Points[1:] {
			if p.Pos.X < minX {
				minX = p.Pos.X
			}
			if p.Pos.X > maxX {
				maxX = p.Pos.X
			}
			if p.Pos.Y < minY {
				minY = p.Pos.Y
			}
			if p.Pos.Y > maxY {
				maxY = p.Pos.Y
			}
		}
		limit := float32(cfg.Physics.MaxSpanPerPoint) * float32(len(c.Points))
		if (maxX-minX) > limit || (maxY-minY) > limit {
			c.Unstable = true
		}
	}

	c.TicksSinceBirth++
	if !c.CanReproduce && float32(c.TicksSinceBirth) > c.EffectiveReproductionCooldown() {
		c.CanReproduce = true
	}
	if c.FailedReproductionCooldown > 0 {
		c.FailedReproductionCooldown--
	}

	for id := range c.PreyPredatedThisTick {
		delete(c.PreyPredatedThisTick, id)
	}
}
