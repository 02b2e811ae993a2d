package dataset

// PositionGroup is the coarse role a player is modeled under.
type PositionGroup string

const (
	GroupAttacker   PositionGroup = "attacker"
	GroupMidfielder PositionGroup = "midfielder"
	GroupDefender   PositionGroup = "defender"
	GroupGoalkeeper PositionGroup = "goalkeeper"
)

// PositionGroups lists every group in a stable order.
var PositionGroups = []PositionGroup{GroupAttacker, GroupMidfielder, GroupDefender, GroupGoalkeeper}

// AttackerFeatures are the statistic columns considered when comparing attackers.
var AttackerFeatures = []string{
	"Performance Gls", "Performance Ast", "Performance G+A",
	"Standard Sh", "Standard SoT", "Standard SoT%",
	"Standard Sh/90", "Standard Dist",
	"Expected xG", "Expected npxG", "Expected xAG", "Expected xA",
	"KP", "PPA", "CrsPA",
	"Progression PrgC", "Progression PrgP", "Progression PrgR",
	"Aerial Duels Won", "Aerial Duels Won%",
	"Tackles Att 3rd", "Performance Off",
}

var MidfielderFeatures = []string{
	"Total Cmp", "Total Att", "KP", "PPA", "CrsPA",
	"Expected xA", "Expected xAG",
	"Progression PrgP", "Progression PrgC", "Progression PrgR",
	"Total TotDist", "Total PrgDist",
	"Int", "Tkl+Int", "Tackles Tkl", "Tackles Mid 3rd",
	"Challenges Tkl%", "Challenges Lost",
	"Performance Gls", "Performance Ast",
	"Aerial Duels Won%", "Performance Recov",
}

var DefenderFeatures = []string{
	"Tackles Tkl", "Tackles TklW", "Int", "Tkl+Int",
	"Challenges Tkl%", "Challenges Lost",
	"Blocks Blocks", "Blocks Sh", "Blocks Pass",
	"Clr", "Aerial Duels Won", "Aerial Duels Lost", "Aerial Duels Won%",
	"Progression PrgP", "Progression PrgC", "Progression PrgR",
	"Total Cmp", "Total Att", "Total PrgDist",
	"Err",
}

var GoalkeeperFeatures = []string{
	"Performance GA", "Performance SoTA", "Performance Saves",
	"Performance Save%", "Performance CS", "Performance CS%",
	"Penalty Kicks PKsv", "Penalty Kicks PKatt",
}

// RadarCategories is the fixed display profile shared across groups.
// Labels missing from the loaded dataset are filtered out at query time.
var RadarCategories = []string{
	"Performance Gls", "Performance Ast", "KP", "GCA GCA",
	"Aerial Duels Won", "Int", "Tackles TklW",
	"Performance Saves", "Performance CS", "Performance GA", "Performance SoTA",
}

// FeaturesByGroup maps each position group to its similarity feature list.
var FeaturesByGroup = map[PositionGroup][]string{
	GroupAttacker:   AttackerFeatures,
	GroupMidfielder: MidfielderFeatures,
	GroupDefender:   DefenderFeatures,
	GroupGoalkeeper: GoalkeeperFeatures,
}

// columnMapping translates canonical statistic names to the column names
// used by the snapshot exporter. The loader applies the inverse so that
// every dataset speaks the canonical vocabulary regardless of source.
var columnMapping = map[string]string{
	"Performance Gls":    "Goals",
	"Performance Ast":    "Assists",
	"Performance G+A":    "Goals + Assists",
	"Standard Sh":        "Sh",
	"Standard SoT":       "SoT",
	"Standard SoT%":      "SoT%",
	"Standard Sh/90":     "Sh/90",
	"Standard Dist":      "Dist",
	"Expected xG":        "xG",
	"Expected npxG":      "Non-Penalty xG",
	"Expected xAG":       "xAG",
	"Expected xA":        "xA",
	"KP":                 "KP",
	"PPA":                "PPA",
	"CrsPA":              "CrsPA",
	"Progression PrgC":   "PrgC",
	"Progression PrgP":   "PrgP",
	"Progression PrgR":   "PrgR",
	"Aerial Duels Won":   "Won",
	"Aerial Duels Won%":  "Won%",
	"Tackles Att 3rd":    "Att 3rd",
	"Performance Off":    "Off_stats_misc",
	"Total Cmp":          "Cmp",
	"Total Att":          "Att",
	"Total TotDist":      "TotDist",
	"Total PrgDist":      "PrgDist",
	"Int":                "Int",
	"Tkl+Int":            "Tkl+Int",
	"Tackles Tkl":        "Tkl",
	"Tackles Mid 3rd":    "Mid 3rd",
	"Challenges Tkl%":    "Tkl%",
	"Challenges Lost":    "Lost",
	"Performance Recov":  "Recov",
	"Tackles TklW":       "TklW",
	"Blocks Blocks":      "Blocks",
	"Blocks Sh":          "Sh_stats_defense",
	"Blocks Pass":        "Pass",
	"Clr":                "Clr",
	"Aerial Duels Lost":  "Lost_stats_misc",
	"Err":                "Err",
	"Performance GA":     "GA",
	"Performance SoTA":   "SoTA",
	"Performance Saves":  "Saves",
	"Performance Save%":  "Save%",
	"Performance CS":     "CS",
	"Performance CS%":    "CS%",
	"Penalty Kicks PKsv": "PKsv",
	"Penalty Kicks PKatt": "PKatt_stats_keeper",
	"GCA GCA":            "GCA",
	"Playing Time MP":    "Matches Played",
	"Born":               "Born",
	"Pos":                "Position",
	"Squad":              "Team",
	"Comp":               "league",
	"Age":                "Age",
	"Nation":             "Nation",
	"Player":             "Player",
	"Rk":                 "Rk_stats_playing_time",
}

// FeatureDescriptions holds human-readable explanations of the statistic
// columns, served verbatim by the feature-descriptions endpoint.
var FeatureDescriptions = map[string]string{
	"Rk":               "Index or rank of the player in the list.",
	"Player":           "Full name of the player.",
	"Nation":           "Player's country of origin.",
	"Pos":              "The position in which the player plays.",
	"Squad":            "The team the player belongs to.",
	"Comp":             "The competition in which the player participated.",
	"Age":              "The player's age.",
	"Performance Gls":  "Goals scored.",
	"Performance Ast":  "Assists provided.",
	"Expected xG":      "Expected Goals.",
	"Expected xA":      "Expected Assists.",
	"KP":               "Key Passes.",
	"Progression PrgC": "Progressive Carries.",
	"Progression PrgP": "Progressive Passes.",
	"Tackles Tkl":      "Tackles made.",
	"Int":              "Interceptions.",
	"Aerial Duels Won": "Aerial duels won.",
}
