package main

// AchievementDef describes a lifetime milestone
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_bite", "First Bite", "Eat your first robot"},
	{"apex_eater", "Apex Eater", "Eat 100 robots"},
	{"heavyweight", "Heavyweight", "Reach a mass of 100"},
	{"colossus", "Colossus", "Reach a mass of 500"},
	{"scavenger", "Scavenger", "Collect 1000 junk items"},
	{"survivor", "Survivor", "Play for 1 hour total"},
}

// CheckAchievements checks if any new achievements should be unlocked
// against the player's lifetime stats. Returns newly unlocked defs.
func CheckAchievements(db *DB, playerID int64) []AchievementDef {
	if db == nil || playerID == 0 {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, id := range existing {
		has[id] = true
	}

	check := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_bite":
			return stats.Kills >= 1
		case "apex_eater":
			return stats.Kills >= 100
		case "heavyweight":
			return stats.PeakMass >= 100
		case "colossus":
			return stats.PeakMass >= 500
		case "scavenger":
			return stats.JunkCollected >= 1000
		case "survivor":
			return stats.Playtime >= 3600
		}
		return false
	}

	var unlocked []AchievementDef
	for _, def := range Achievements {
		if check(def.ID) {
			if newly, err := db.UnlockAchievement(playerID, def.ID); err == nil && newly {
				unlocked = append(unlocked, def)
			}
		}
	}
	return unlocked
}
