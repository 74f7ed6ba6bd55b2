package bracket

type Team struct {
	ID                string `db:"id" json:"id"`
	Name              string `db:"name" json:"name"`
	Seed              int    `db:"seed" json:"seed"`
	Wins              int    `db:"wins" json:"wins"`
	Losses            int    `db:"losses" json:"losses"`
	PointDifferential int    `db:"point_differential" json:"pointDifferential"`
}

// WinPercentage is zero for a team with no games played.
func (t Team) WinPercentage() float64 {
	played := t.Wins + t.Losses
	if played == 0 {
		return 0
	}
	return float64(t.Wins) / float64(played)
}
