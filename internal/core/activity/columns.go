package activity

// Fixed transition table layout; downstream notebooks depend on this order
const (
	ColUserID         = "user_id"
	ColSourceJoinTime = "source_join_time"
	ColTargetJoinTime = "target_join_time"
	ColPreCount       = "pre_transition_count"
	ColPostCount      = "post_transition_count"
	ColPreTexts       = "pre_transition_texts"
	ColPostTexts      = "post_transition_texts"
	ColTargetCount    = "target_activity_count"
	ColTargetTexts    = "target_texts"
	ColPrePerDay      = "pre_per_day"
	ColPostPerDay     = "post_per_day"
	ColTargetPerDay   = "target_per_day"
)

// TransitionColumns returns the header; rate columns come after the fixed ones
func TransitionColumns(withRates bool) []string {
	cols := []string{
		ColUserID, ColSourceJoinTime, ColTargetJoinTime,
		ColPreCount, ColPostCount, ColPreTexts, ColPostTexts,
		ColTargetCount, ColTargetTexts,
	}
	if withRates {
		cols = append(cols, ColPrePerDay, ColPostPerDay, ColTargetPerDay)
	}
	return cols
}

// Row renders t in TransitionColumns order. rates may be nil.
func (t Transition) Row(rates *Rates) []any {
	row := []any{
		t.UserID, t.SourceJoinTime, t.TargetJoinTime,
		t.PreCount, t.PostCount, t.PreTexts, t.PostTexts,
		t.TargetCount, t.TargetTexts,
	}
	if rates != nil {
		row = append(row, rates.PrePerDay, rates.PostPerDay, rates.TargetPerDay)
	}
	return row
}
