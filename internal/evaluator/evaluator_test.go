package evaluator

import (
	"testing"

	"github.com/lox/holdem-live/internal/deck"
	"github.com/lox/holdem-live/internal/randutil"
)

func score5(t *testing.T, cards string) int {
	t.Helper()
	parsed := deck.MustParseMany(cards)
	if len(parsed) != 5 {
		t.Fatalf("expected 5 cards in %q", cards)
	}
	var five [5]deck.Card
	copy(five[:], parsed)
	return int(evaluate5(five))
}

func TestCategoryBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards string
		want  int
	}{
		{"royal flush", "AsKsQsJsTs", 1},
		{"king-high straight flush", "KsQsJsTs9s", 2},
		{"six-high straight flush", "6s5s4s3s2s", 9},
		{"wheel straight flush", "5s4s3s2sAs", 10},

		{"best quads", "AsAhAdAcKs", 11},
		{"quad aces queen kicker", "AsAhAdAcQs", 12},
		{"worst quads", "2s2h2d2c3s", 166},

		{"best full house", "AsAhAdKsKh", 167},
		{"worst full house", "2s2h2d3s3h", 322},

		{"best flush", "AsKsQsJs9s", 323},
		{"worst flush", "7s5s4s3s2s", 1599},

		{"broadway straight", "AsKdQhJcTs", 1600},
		{"wheel straight", "5h4d3c2sAs", 1609},

		{"best trips", "AsAhAdKsQh", 1610},
		{"worst trips", "2s2h2d4c3s", 2467},

		{"best two pair", "AsAhKsKhQd", 2468},
		{"worst two pair", "3s3h2d2c4s", 3325},

		{"best pair", "AsAhKsQdJc", 3326},
		{"worst pair", "2s2h5d4c3s", 6185},

		{"best high card", "AsKdQhJc9s", 6186},
		{"worst high card", "7s5d4h3c2s", 7462},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := score5(t, tt.cards); got != tt.want {
				t.Errorf("evaluate5(%s) = %d, want %d", tt.cards, got, tt.want)
			}
		})
	}
}

func TestKickersOrderWithinCategory(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		// quad kicker
		{"AsAhAdAcKs", "AsAhAdAcQs"},
		// full house pair rank
		{"AsAhAdKsKh", "AsAhAdQsQh"},
		// flush second card
		{"AsKsQsJs9s", "AsKsQsTs9s"},
		// trips kickers
		{"AsAhAdKsQh", "AsAhAdKsJh"},
		// two pair kicker
		{"AsAhKsKhQd", "AsAhKsKhJd"},
		// pair third kicker
		{"AsAhKsQdJc", "AsAhKsQdTc"},
		// high card last kicker
		{"AsKdQhJc9s", "AsKdQhJc8s"},
	}

	for _, p := range pairs {
		better := score5(t, p[0])
		worse := score5(t, p[1])
		if better >= worse {
			t.Errorf("%s (%d) should beat %s (%d)", p[0], better, p[1], worse)
		}
		if Category(better) != Category(worse) {
			t.Errorf("%s and %s should share a category, got %s vs %s",
				p[0], p[1], Category(better), Category(worse))
		}
	}
}

func TestSevenCardSelection(t *testing.T) {
	t.Parallel()

	eval := New()

	tests := []struct {
		name         string
		hole         string
		board        string
		wantCategory string
	}{
		{"royal across hole and board", "As Ks", "Qs Js Ts 2h 3d", "Royal Flush"},
		{"board pair plus hole pair makes two pair", "Ah Kd", "As Kc 7h 4s 2d", "Two Pair"},
		{"flush hiding in seven cards", "9h 2h", "Kh 7h 4h As Ad", "Flush"},
		{"straight using one hole card", "9c 2d", "8h 7s 6d 5c Ah", "Straight"},
		{"counterfeited board plays", "2c 3c", "Ah Ad Kh Ks Qd", "Two Pair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, category, err := eval.Evaluate(
				deck.MustParseMany(tt.hole),
				deck.MustParseMany(tt.board),
				nil,
			)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if category != tt.wantCategory {
				t.Errorf("category = %s (score %d), want %s", category, score, tt.wantCategory)
			}
		})
	}
}

func TestEvaluateInputValidation(t *testing.T) {
	t.Parallel()

	eval := New()

	if _, _, err := eval.Evaluate(deck.MustParseMany("As"), nil, nil); err == nil {
		t.Error("expected error for one hole card")
	}
	if _, _, err := eval.Evaluate(deck.MustParseMany("As Ks"), deck.MustParseMany("2h 3h 4h 5h 6h 7h"), nil); err == nil {
		t.Error("expected error for six board cards")
	}
}

func TestScoreCompare(t *testing.T) {
	t.Parallel()

	if Score(1).Compare(Score(2)) != 1 {
		t.Error("lower score should compare as better")
	}
	if Score(100).Compare(Score(50)) != -1 {
		t.Error("higher score should compare as worse")
	}
	if Score(42).Compare(Score(42)) != 0 {
		t.Error("equal scores should tie")
	}
}

func TestScoreToStrengthBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  float64
	}{
		{1, 0.95}, {10, 0.95},
		{11, 0.90}, {166, 0.90},
		{167, 0.85}, {322, 0.85},
		{323, 0.75}, {1599, 0.75},
		{1600, 0.65}, {1609, 0.65},
		{1610, 0.55}, {2467, 0.55},
		{2468, 0.45}, {3325, 0.45},
		{3326, 0.25}, {6185, 0.25},
		{6186, 0.05}, {7462, 0.05},
	}
	for _, tt := range tests {
		if got := ScoreToStrength(tt.score); got != tt.want {
			t.Errorf("ScoreToStrength(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestScoreToStrengthMonotonic(t *testing.T) {
	t.Parallel()

	prev := ScoreToStrength(1)
	for score := 2; score <= WorstScore; score++ {
		cur := ScoreToStrength(score)
		if cur > prev {
			t.Fatalf("strength increased from %v to %v at score %d", prev, cur, score)
		}
		prev = cur
	}
}

func TestMonteCarloDeterministicUnderSeed(t *testing.T) {
	t.Parallel()

	eval := New()
	hole := deck.MustParseMany("Ah Kh")
	board := deck.MustParseMany("Qh 7c 2d")

	a, _, err := eval.Evaluate(hole, board, randutil.New(99))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	b, _, err := eval.Evaluate(hole, board, randutil.New(99))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if a != b {
		t.Errorf("same seed produced different averages: %d vs %d", a, b)
	}
	if a < 1 || a > WorstScore {
		t.Errorf("averaged score %d outside valid range", a)
	}

	c, _, err := eval.Evaluate(hole, nil, randutil.New(5))
	if err != nil {
		t.Fatalf("preflop Evaluate failed: %v", err)
	}
	if c < 1 || c > WorstScore {
		t.Errorf("preflop averaged score %d outside valid range", c)
	}
}

func TestMonteCarloNeverDealsSeenCards(t *testing.T) {
	t.Parallel()

	// With 3 of the 4 queens visible, a sampled completion holding the
	// remaining queen is fine, but a duplicate of a seen card would distort
	// the average far outside its bounds. Locked-nuts hands pin the result.
	eval := New()
	hole := deck.MustParseMany("As Ks")
	board := deck.MustParseMany("Qs Js Ts")

	// Hero already holds a royal flush; every completion must score 1.
	score, category, err := eval.Evaluate(hole, board, randutil.New(7))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if score != 1 || category != "Royal Flush" {
		t.Errorf("locked royal flush averaged %d (%s), want 1 (Royal Flush)", score, category)
	}
}

func TestEstimateWinProbability(t *testing.T) {
	t.Parallel()

	// Locked royal flush cannot lose or tie.
	est, err := EstimateWinProbability(
		deck.MustParseMany("As Ks"),
		deck.MustParseMany("Qs Js Ts"),
		2, 400, randutil.New(1),
	)
	if err != nil {
		t.Fatalf("EstimateWinProbability failed: %v", err)
	}
	if est.WinProbability != 1.0 {
		t.Errorf("locked nuts win probability = %v, want 1.0", est.WinProbability)
	}
	if est.Samples != 400 {
		t.Errorf("samples = %d, want 400", est.Samples)
	}
	if est.Categories["Royal Flush"] != 400 {
		t.Errorf("expected all samples to be royal flushes, got %v", est.Categories)
	}

	// Pocket aces are a strong favourite heads-up.
	est, err = EstimateWinProbability(
		deck.MustParseMany("Ah Ad"),
		nil,
		1, 2000, randutil.New(2),
	)
	if err != nil {
		t.Fatalf("EstimateWinProbability failed: %v", err)
	}
	if est.WinProbability < 0.75 || est.WinProbability > 0.95 {
		t.Errorf("pocket aces heads-up win probability = %v, want ~0.85", est.WinProbability)
	}

	if _, err := EstimateWinProbability(deck.MustParseMany("Ah Ad"), nil, 0, 100, nil); err == nil {
		t.Error("expected error for zero opponents")
	}
}

// TestFullEnumeration walks every five-card hand and checks that the score
// space is covered exactly: all 7462 classes appear and the category
// frequencies match the published counts for 52-choose-5.
func TestFullEnumeration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 2.6M-hand enumeration in short mode")
	}
	t.Parallel()

	var cards [52]deck.Card
	i := 0
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			cards[i] = deck.Card{Rank: rank, Suit: suit}
			i++
		}
	}

	seen := make([]bool, WorstScore+1)
	counts := make(map[string]int)
	total := 0

	var five [5]deck.Card
	for a := 0; a < 48; a++ {
		for b := a + 1; b < 49; b++ {
			for c := b + 1; c < 50; c++ {
				for d := c + 1; d < 51; d++ {
					for e := d + 1; e < 52; e++ {
						five[0], five[1], five[2], five[3], five[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						s := int(evaluate5(five))
						if s < 1 || s > WorstScore {
							t.Fatalf("score %d out of range for %v", s, five)
						}
						seen[s] = true
						counts[Category(s)]++
						total++
					}
				}
			}
		}
	}

	if total != 2598960 {
		t.Fatalf("enumerated %d hands, want 2598960", total)
	}

	missing := 0
	for s := 1; s <= WorstScore; s++ {
		if !seen[s] {
			missing++
		}
	}
	if missing != 0 {
		t.Errorf("%d of %d score classes never produced", missing, WorstScore)
	}

	want := map[string]int{
		"Royal Flush":     4,
		"Straight Flush":  36,
		"Four of a Kind":  624,
		"Full House":      3744,
		"Flush":           5108,
		"Straight":        10200,
		"Three of a Kind": 54912,
		"Two Pair":        123552,
		"One Pair":        1098240,
		"High Card":       1302540,
	}
	for category, n := range want {
		if counts[category] != n {
			t.Errorf("%s count = %d, want %d", category, counts[category], n)
		}
	}
}
