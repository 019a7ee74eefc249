package syncer

// Kind describes one synchronizable entity kind: where its records live
// locally, which remote table holds them, and which payload fields change
// name on the wire.
type Kind struct {
	// Name is the singular kind name, used in logs and errors.
	Name string

	// Collection is the local collection the kind's records live in.
	Collection string

	// Table is the remote table name.
	Table string

	// FieldMap maps local payload field names to remote column names for
	// the kind's foreign-key fields. Fields not listed pass through with
	// their local name.
	FieldMap map[string]string
}

// kinds is the fixed list of synchronizable entity kinds. Projects come
// first: they are the primary kind, used by migration as the provisioning
// probe and the nothing-to-migrate check.
var kinds = []Kind{
	{
		Name:       "project",
		Collection: "projects",
		Table:      "projects",
	},
	{
		Name:       "character",
		Collection: "characters",
		Table:      "characters",
		FieldMap:   map[string]string{"projectId": "project_id"},
	},
	{
		Name:       "scene",
		Collection: "scenes",
		Table:      "scenes",
		FieldMap:   map[string]string{"projectId": "project_id", "chapterId": "chapter_id"},
	},
	{
		Name:       "canvas element",
		Collection: "canvasElements",
		Table:      "canvas_elements",
		FieldMap:   map[string]string{"projectId": "project_id"},
	},
	{
		Name:       "connection",
		Collection: "connections",
		Table:      "connections",
		FieldMap: map[string]string{
			"projectId": "project_id",
			"sourceId":  "source_id",
			"targetId":  "target_id",
		},
	},
	{
		Name:       "plot hole",
		Collection: "plotHoles",
		Table:      "plot_holes",
		FieldMap:   map[string]string{"projectId": "project_id", "sceneId": "scene_id"},
	},
	{
		Name:       "conversation",
		Collection: "conversations",
		Table:      "conversations",
		FieldMap:   map[string]string{"projectId": "project_id"},
	},
	{
		Name:       "manuscript",
		Collection: "manuscripts",
		Table:      "manuscripts",
		FieldMap:   map[string]string{"projectId": "project_id"},
	},
	{
		Name:       "chapter",
		Collection: "chapters",
		Table:      "chapters",
		FieldMap:   map[string]string{"projectId": "project_id", "manuscriptId": "manuscript_id"},
	},
	{
		Name:       "writing session",
		Collection: "writingSessions",
		Table:      "writing_sessions",
		FieldMap:   map[string]string{"projectId": "project_id"},
	},
	{
		Name:       "story seed",
		Collection: "storySeeds",
		Table:      "story_seeds",
	},
	{
		Name:       "custom card type",
		Collection: "customCardTypes",
		Table:      "custom_card_types",
		FieldMap:   map[string]string{"projectId": "project_id"},
	},
}

// Kinds returns the fixed entity kind registry, primary kind first.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}
