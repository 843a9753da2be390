package quest

// Condition names a rule for unlocking an achievement. Conditions are
// evaluated against a Snapshot after every ingested visit.
type Condition string

const (
	ConditionVisitFirstPOI   Condition = "visit_first_poi"
	ConditionVisitThreePOIs  Condition = "visit_3_pois"
	ConditionReach500Points  Condition = "reach_500_points"
	ConditionCompleteMotif   Condition = "complete_hottabych"
	ConditionVisitBeforeNine Condition = "visit_before_9am"
)

// Snapshot is the freshly re-read state an achievement condition is judged
// against: the user's total visit count and points after the visit was
// applied, whether the visited POI's motif is now completed, and the local
// hour of the just-recorded visit.
type Snapshot struct {
	VisitCount     int
	TotalPoints    int
	MotifCompleted bool
	VisitHour      int
}

// predicates maps each condition to a pure rule over a Snapshot. Adding a
// condition is a one-line change here.
var predicates = map[Condition]func(Snapshot) bool{
	ConditionVisitFirstPOI:   func(s Snapshot) bool { return s.VisitCount >= 1 },
	ConditionVisitThreePOIs:  func(s Snapshot) bool { return s.VisitCount >= 3 },
	ConditionReach500Points:  func(s Snapshot) bool { return s.TotalPoints >= 500 },
	ConditionCompleteMotif:   func(s Snapshot) bool { return s.MotifCompleted },
	ConditionVisitBeforeNine: func(s Snapshot) bool { return s.VisitHour < 9 },
}

// KnownCondition reports whether c names a condition the evaluator
// understands.
func KnownCondition(c Condition) bool {
	_, ok := predicates[c]
	return ok
}

// ConditionMet reports whether the condition holds for the snapshot.
// Unknown condition tags never unlock.
func ConditionMet(c Condition, s Snapshot) bool {
	pred, ok := predicates[c]
	if !ok {
		return false
	}
	return pred(s)
}
