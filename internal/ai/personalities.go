package ai

// The six decision policies. Each works over the derived situation and
// settles on fold, call or raise with a total raise target; the engine
// caps and legality-checks the result. Thresholds live on the canonical
// strength scale (0.05 high card .. 0.95 straight flush), so "0.25" is
// any pair or better and "0.45" is two pair or better.

// decideConservative plays fit-or-fold: commits short stacks with made
// hands, avoids big pots deep, and only raises with strong holdings.
func (pl *Policy) decideConservative(sit situation) choice {
	switch {
	case sit.spr < 3 && sit.strength >= 0.45:
		if pl.rng.Float64() < 0.7 {
			return choice{action: "raise", amount: sit.tableBet + sit.minIncr, confidence: 0.8,
				reason: "short stack with a made hand, committing"}
		}
		return choice{action: "call", confidence: 0.7, reason: "short stack with a made hand"}

	case sit.spr > 10 && sit.strength < 0.65:
		return choice{action: "fold", confidence: 0.6, reason: "too deep to continue without a big hand"}

	case sit.strength >= 0.75:
		if pl.rng.Float64() < 0.7 {
			return choice{action: "raise", amount: sit.tableBet + sit.minIncr, confidence: 0.9,
				reason: "strong hand, raising for value"}
		}
		return choice{action: "call", confidence: 0.85, reason: "strong hand, keeping the pot small"}

	case sit.strength >= 0.45:
		return choice{action: "call", confidence: 0.7, reason: "decent hand, calling"}

	case sit.strength >= 0.25 && sit.callAmount <= sit.stack/20:
		return choice{action: "call", confidence: 0.5, reason: "marginal hand but the price is small"}

	default:
		return choice{action: "fold", confidence: 0.7, reason: "weak hand, folding"}
	}
}

// decideAggressive piles pressure on: jams short, bluffs deep, and
// raises most hands it plays.
func (pl *Policy) decideAggressive(sit situation) choice {
	if sit.spr < 3 && sit.strength >= 0.25 {
		return choice{action: "raise", amount: sit.allInTotal, confidence: 0.85,
			reason: "short stack, shoving all-in"}
	}

	if sit.spr > 7 && sit.strength < 0.25 {
		bluffP := 0.2
		if sit.callAmount <= sit.stack/20 {
			bluffP = 0.4
		}
		if pl.rng.Float64() < bluffP {
			return choice{action: "raise", amount: sit.tableBet + 2*sit.minIncr, confidence: 0.4,
				reason: "deep stack bluff"}
		}
	}

	switch {
	case sit.strength >= 0.55:
		if pl.rng.Float64() < 0.8 {
			return choice{action: "raise", amount: sit.tableBet + sit.pot, confidence: 0.9,
				reason: "big hand, betting big"}
		}
		return choice{action: "call", confidence: 0.8, reason: "big hand, trapping"}

	case sit.strength >= 0.25:
		if pl.rng.Float64() < 0.6 {
			return choice{action: "raise", amount: sit.tableBet + 2*sit.minIncr, confidence: 0.6,
				reason: "playable hand, applying pressure"}
		}
		return choice{action: "call", confidence: 0.55, reason: "playable hand, calling"}

	default:
		// Occasional cheap bluff before giving up.
		if pl.rng.Float64() < 0.15 && sit.tableBet+sit.minIncr <= sit.stack/8 {
			return choice{action: "raise", amount: sit.tableBet + sit.minIncr, confidence: 0.3,
				reason: "cheap bluff"}
		}
		return choice{action: "fold", confidence: 0.6, reason: "nothing to work with"}
	}
}

// decideMathematical reasons from SPR and pot odds: commits when the
// stack-to-pot ratio says so, otherwise calls only at the right price.
func (pl *Policy) decideMathematical(sit situation) choice {
	switch {
	case sit.spr < 3 && sit.strength >= 0.25:
		return choice{action: "raise", amount: sit.allInTotal, confidence: 0.8,
			reason: "SPR below 3, mathematically committed"}

	case sit.strength >= 0.65:
		target := sit.tableBet + sit.pot*2/3
		if target < sit.tableBet+sit.minIncr {
			target = sit.tableBet + sit.minIncr
		}
		return choice{action: "raise", amount: target, confidence: 0.85,
			reason: "strong hand, value raise"}

	case sit.strength >= 0.45:
		return choice{action: "call", confidence: 0.7, reason: "good hand, calling"}

	case sit.strength >= 0.25:
		if sit.potOdds <= 0.33 || sit.spr < 5 {
			return choice{action: "call", confidence: 0.55, reason: "price is right"}
		}
		return choice{action: "fold", confidence: 0.6, reason: "pot odds too poor"}

	default:
		return choice{action: "fold", confidence: 0.7, reason: "negative expectation"}
	}
}

// decideLoosePassive is the calling station: calls any pair unless it is
// genuinely expensive, and pays off tiny bets with anything.
func (pl *Policy) decideLoosePassive(sit situation) choice {
	if sit.strength >= 0.25 {
		if sit.callAmount > sit.stack/3 {
			return choice{action: "fold", confidence: 0.5, reason: "even a station has limits"}
		}
		return choice{action: "call", confidence: 0.6, reason: "got a piece, calling"}
	}
	if sit.callAmount <= sit.stack/40 {
		return choice{action: "call", confidence: 0.4, reason: "tiny bet, might as well see"}
	}
	return choice{action: "fold", confidence: 0.55, reason: "nothing and it costs real chips"}
}

// decideTightAggressive plays few hands and plays them hard.
func (pl *Policy) decideTightAggressive(sit situation) choice {
	switch {
	case sit.strength < 0.35:
		return choice{action: "fold", confidence: 0.75, reason: "outside the range"}

	case sit.strength >= 0.75:
		return choice{action: "raise", amount: sit.tableBet + sit.pot, confidence: 0.9,
			reason: "premium hand, pot-sized raise"}

	case sit.strength >= 0.55:
		if sit.spr < 5 {
			return choice{action: "raise", amount: sit.allInTotal, confidence: 0.85,
				reason: "strong hand and shallow, pushing"}
		}
		target := sit.tableBet + sit.pot/2
		if target < sit.tableBet+sit.minIncr {
			target = sit.tableBet + sit.minIncr
		}
		return choice{action: "raise", amount: target, confidence: 0.8,
			reason: "strong hand, value raise"}

	default:
		return choice{action: "call", confidence: 0.6, reason: "speculative but playable"}
	}
}

// decideManiac raises almost everything and hates calling.
func (pl *Policy) decideManiac(sit situation) choice {
	if sit.strength >= 0.45 {
		return choice{action: "raise", amount: sit.tableBet + 2*sit.pot, confidence: 0.85,
			reason: "made hand, overbetting"}
	}
	if pl.rng.Float64() < 0.7 {
		return choice{action: "raise", amount: sit.tableBet + sit.pot, confidence: 0.4,
			reason: "raising because folding is boring"}
	}
	if sit.callAmount <= sit.stack/10 {
		return choice{action: "call", confidence: 0.35, reason: "reluctantly calling"}
	}
	return choice{action: "fold", confidence: 0.4, reason: "even maniacs fold sometimes"}
}
