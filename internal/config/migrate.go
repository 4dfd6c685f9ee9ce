package config

// migration upgrades a raw config mapping from one schema version to the
// next. Steps only fill in missing fields, so user customizations are
// never overwritten.
type migration func(raw map[string]any) (map[string]any, []string)

// migrations is indexed by source version: migrations[0] upgrades v0 to v1.
var migrations = []migration{
	migrateV0toV1,
}

// Migrate applies every migration step between the raw config's declared
// version and CurrentVersion, accumulating human-readable descriptions of
// what changed. A config already at the current version is returned
// unchanged with no changes.
func Migrate(raw map[string]any) (map[string]any, []string) {
	version := 0
	if v, ok := raw["version"].(int); ok {
		version = v
	}

	if version >= CurrentVersion {
		return raw, nil
	}

	out := raw
	var changes []string
	for v := version; v < CurrentVersion; v++ {
		var stepChanges []string
		out, stepChanges = migrations[v](out)
		changes = append(changes, stepChanges...)
	}
	return out, changes
}

func migrateV0toV1(raw map[string]any) (map[string]any, []string) {
	var changes []string

	out := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}
	def := Default()

	if _, ok := out["statuses"]; !ok {
		out["statuses"] = toAnySlice(def.Statuses)
		changes = append(changes, "Added default statuses: todo, doing, done")
	}
	if _, ok := out["priorities"]; !ok {
		out["priorities"] = toAnySlice(def.Priorities)
		changes = append(changes, "Added default priorities: low, medium, high")
	}

	defaults, _ := out["defaults"].(map[string]any)
	newDefaults := make(map[string]any, len(defaults)+2)
	for k, v := range defaults {
		newDefaults[k] = v
	}
	if _, ok := newDefaults["priority"]; !ok {
		newDefaults["priority"] = def.Defaults.Priority
		changes = append(changes, "Added default priority: medium")
	}
	if _, ok := newDefaults["template"]; !ok {
		newDefaults["template"] = def.Defaults.Template
		changes = append(changes, "Added default template")
	}
	out["defaults"] = newDefaults

	out["version"] = 1
	changes = append(changes, "Set config version to 1")

	return out, changes
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
