package playlistconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/friendsincode/smartlists/internal/apperr"
	"github.com/friendsincode/smartlists/internal/smartlist"
)

const sampleDoc = `{
  "data": [
    {
      "parent": "",
      "mainConditions": ["House"],
      "negativeConditions": ["Vocal"],
      "playlists": [
        {"name": "Deep House", "operator": 1, "contains": ["Deep"]},
        {"name": "Peak", "operator": 2, "rating": ["4", "5"],
         "dateCreated": {"timePeriod": 3, "timeUnit": "month", "operator": "IN_LAST"}},
        {"name": "Late Night", "operator": 1, "playlistType": "folder", "link": "late.json"}
      ]
    }
  ]
}`

func TestParseSample(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Categories) != 1 || doc.PlaylistCount() != 3 {
		t.Fatalf("unexpected shape: %+v", doc)
	}

	c := doc.Categories[0]
	if !reflect.DeepEqual(c.MainConditions, []string{"House"}) {
		t.Fatalf("mainConditions = %v", c.MainConditions)
	}

	peak := c.Playlists[1]
	if peak.Operator.Logical() != smartlist.LogicalAny {
		t.Fatalf("operator = %v", peak.Operator)
	}
	if f := peak.DateCreated.Filter(); f.Period != 3 || f.Unit != "month" {
		t.Fatalf("date filter = %+v", f)
	}

	folder := c.Playlists[2]
	if !folder.IsFolder() || folder.Link != "late.json" {
		t.Fatalf("folder item = %+v", folder)
	}
	if c.Playlists[0].Type() != TypePlaylist {
		t.Fatalf("default type = %q", c.Playlists[0].Type())
	}

	if problems := Validate(doc); len(problems) != 0 {
		t.Fatalf("sample should validate: %v", problems)
	}
}

func TestParseLegacyDateKeys(t *testing.T) {
	doc, err := Parse([]byte(`{"data":[{"parent":"","mainConditions":[],"playlists":[
		{"name":"New","operator":1,"dateCreated":{"time_period":2,"time_unit":"week","operator":"IN_RANGE"}}]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := doc.Categories[0].Playlists[0].DateCreated
	if d.TimePeriod != 2 || d.TimeUnit != "week" {
		t.Fatalf("legacy keys not read: %+v", d)
	}
	if problems := Validate(doc); len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"invalid json", `{"data": [`, ""},
		{"missing data", `{"categories": []}`, "missing 'data'"},
		{"data not list", `{"data": {}}`, "must be a list"},
		{"null data", `{"data": null}`, "must be a list"},
		{"wrong item type", `{"data": [{"playlists": [{"name": 5}]}]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	doc, err := Parse([]byte(`{"data":[
		{"parent":"","mainConditions":["House"],"playlists":[
			{"name":"Good","operator":1},
			{"name":"  ","operator":3},
			{"name":"Folder","operator":1,"playlistType":"folder"},
			{"name":"Rated","operator":1,"rating":["5"]},
			{"name":"Dated","operator":1,"dateCreated":{"timePeriod":0,"timeUnit":"fortnight"}},
			{"operator":1,"playlistType":"smart"}
		]},
		{"playlists":[]}
	]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := make([]string, 0)
	for _, p := range Validate(doc) {
		got = append(got, p.String())
	}
	want := []string{
		"Category 0.playlists[1]: 'name' cannot be empty",
		"Category 0.playlists[1]: 'operator' must be 1 (ALL) or 2 (ANY)",
		"Category 0.playlists[2]: Folder playlist requires 'link' field",
		"Category 0.playlists[3]: 'rating' must have exactly 2 elements",
		"Category 0.playlists[4].dateCreated: 'timePeriod' must be positive",
		"Category 0.playlists[4].dateCreated: 'timeUnit' must be one of [day week month year]",
		"Category 0.playlists[5]: Missing required field 'name'",
		`Category 0.playlists[5]: 'playlistType' must be "playlist" or "folder"`,
		"Category 1: Missing required field 'parent'",
		"Category 1: Missing required field 'mainConditions'",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("problems:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestValidateItem(t *testing.T) {
	if err := ValidateItem(Item{Name: "Ok", Operator: OperatorAll}); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	err := ValidateItem(Item{Name: "Broken", Operator: OperatorAll, Rating: []string{"1", "2", "3"}})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "'rating' must have exactly 2 elements") {
		t.Fatalf("error = %q", err)
	}

	if err := ValidateItem(Item{Name: "Unrated", Operator: OperatorAll, Rating: []string{}}); err != nil {
		t.Fatalf("empty rating should mean no rating filter, got %v", err)
	}

	err = ValidateItem(Item{Operator: OperatorAll, PlaylistType: TypeFolder})
	if err == nil || !strings.Contains(err.Error(), "'name' cannot be empty") || !strings.Contains(err.Error(), "requires 'link'") {
		t.Fatalf("error = %v", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", ".hidden.json", "notes.txt", "C.JSON"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`{"data":[]}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if !reflect.DeepEqual(names, []string{"C.JSON", "a.json", "b.json"}) {
		t.Fatalf("Discover = %v", names)
	}

	if _, err := Discover(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestDirLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sets", "late.json"), []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	d := Dir{Root: root}
	if key := d.Resolve("sets/../sets/late.json"); key != filepath.Join(root, "sets", "late.json") {
		t.Fatalf("Resolve = %q", key)
	}
	if abs := d.Resolve("/etc/x/../late.json"); abs != "/etc/late.json" {
		t.Fatalf("Resolve(abs) = %q", abs)
	}
	chdir(t, root)
	rel := Dir{Root: "sets"}
	if key := rel.Resolve("late.json"); key != filepath.Join(root, "sets", "late.json") {
		t.Fatalf("Resolve with relative root = %q", key)
	}
	if key := Key("sets/./late.json"); key != rel.Resolve("late.json") {
		t.Fatalf("Key = %q, Resolve = %q", key, rel.Resolve("late.json"))
	}

	doc, err := d.Load("sets/../sets/late.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.PlaylistCount() != 3 {
		t.Fatalf("count = %d", doc.PlaylistCount())
	}

	if _, err := d.Load("nope.json"); err == nil {
		t.Fatal("expected error for missing link")
	}
}
