package tournament

type LinkType string

const (
	LinkWinner   LinkType = "WINNER"
	LinkLoser    LinkType = "LOSER"
	LinkPosition LinkType = "POSITION"
)

// FeedProfile describes how a link fills the target round. DRAW feeds place
// participants across the whole target structure; ROUND feeds fill a single
// target round.
type FeedProfile string

const (
	FeedDraw     FeedProfile = "DRAW"
	FeedRound    FeedProfile = "ROUND"
	FeedTopDown  FeedProfile = "TOP_DOWN"
	FeedBottomUp FeedProfile = "BOTTOM_UP"
)

type LinkSource struct {
	DrawID             string `yaml:"draw_id,omitempty"`
	StructureID        string `yaml:"structure_id"`
	RoundNumber        int    `yaml:"round_number,omitempty"`
	FinishingPositions []int  `yaml:"finishing_positions,omitempty"`
}

type LinkTarget struct {
	DrawID      string      `yaml:"draw_id,omitempty"`
	StructureID string      `yaml:"structure_id"`
	RoundNumber int         `yaml:"round_number,omitempty"`
	FeedProfile FeedProfile `yaml:"feed_profile,omitempty"`
}

// StructureLink connects a source structure (or one of its rounds) to a
// target structure round, possibly across draws.
type StructureLink struct {
	LinkType LinkType   `yaml:"link_type"`
	Source   LinkSource `yaml:"source"`
	Target   LinkTarget `yaml:"target"`
}
