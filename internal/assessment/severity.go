package assessment

// Classify maps a score to a band using the catalog's ordered boundary table.
// A score equal to a bound belongs to that bound's band, so ties resolve to the
// less severe band. Scores past every bound fall through to the fallback band.
func (c *Catalog) Classify(score float64) Band {
	for _, t := range c.Thresholds {
		if c.Polarity == HigherIsStrength {
			if score >= t.Bound {
				return t.Band
			}
			continue
		}
		if score <= t.Bound {
			return t.Band
		}
	}
	return c.Fallback
}

// moreConcerning reports whether score a signals more concern than score b.
func (c *Catalog) moreConcerning(a, b float64) bool {
	if c.Polarity == HigherIsStrength {
		return a < b
	}
	return a > b
}
