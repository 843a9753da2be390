// Package level derives a player's level from cumulative points.
//
// Levels follow a square-root curve with a fixed base of 100 XP:
// level = floor(1 + sqrt(points/100)), so level 2 starts at 100 points,
// level 3 at 400, level 4 at 900. The level stored on a user row is never
// authoritative; callers recompute from points.
package level

import "math"

const baseXP = 100

// Level returns the level for the given cumulative points.
func Level(points int) int {
	if points < 0 {
		points = 0
	}
	return 1 + int(math.Sqrt(float64(points)/baseXP))
}

// XPForLevel returns the cumulative points at which the given level begins.
func XPForLevel(lvl int) int {
	if lvl < 1 {
		lvl = 1
	}
	return baseXP * (lvl - 1) * (lvl - 1)
}

// Progress describes position within the current level.
type Progress struct {
	Level       int `json:"level"`
	CurrentXP   int `json:"currentXp"`
	NextLevelXP int `json:"nextLevelXp"`
	TotalPoints int `json:"totalPoints"`
}

// ForPoints returns the full level progress for the given points:
// the derived level, XP earned within it, and XP needed to finish it.
func ForPoints(points int) Progress {
	lvl := Level(points)
	floor := XPForLevel(lvl)
	return Progress{
		Level:       lvl,
		CurrentXP:   points - floor,
		NextLevelXP: XPForLevel(lvl+1) - floor,
		TotalPoints: points,
	}
}
