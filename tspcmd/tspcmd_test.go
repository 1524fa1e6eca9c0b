package tspcmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultClassification(t *testing.T) {
	require := require.New(t)
	tbl := Default()

	require.True(tbl.IsFunction("reset"))
	require.True(tbl.IsFunction("linearv"))
	require.True(tbl.IsProperty("nplc"))
	require.True(tbl.IsProperty("levelv"))
	require.True(tbl.IsConstant("OUTPUT_ON"))
	require.True(tbl.IsConstant("SOURCE_COMPLETE_EVENT_ID"))
	require.True(tbl.IsGroup("smua"))
	require.True(tbl.IsGroup("trigger"))

	require.False(tbl.IsFunction("nplc"))
	require.False(tbl.IsProperty("smua"))
	require.False(tbl.IsGroup("bogus"))
}

func TestDefaultIndexedPaths(t *testing.T) {
	require := require.New(t)
	tbl := Default()

	require.True(tbl.IsIndexed("trigger.blender.stimulus"))
	require.True(tbl.IsIndexed("trigger.timer.stimulus"))
	// The same member name is a scalar property elsewhere.
	require.False(tbl.IsIndexed("smua.trigger.measure.stimulus"))
	require.True(tbl.IsProperty("stimulus"))
}

// A name may belong to at most one of the function, property, constant, and
// group sets; overlapping entries would make member resolution ambiguous.
func TestDefaultSetsDisjoint(t *testing.T) {
	sets := map[string][]string{
		"functions":  defaultFunctions,
		"properties": defaultProperties,
		"constants":  defaultConstants,
		"groups":     defaultGroups,
	}

	seen := make(map[string]string)
	for setName, names := range sets {
		for _, name := range names {
			if prev, ok := seen[name]; ok {
				t.Errorf("name %q appears in both %s and %s", name, prev, setName)
			}
			seen[name] = setName
		}
	}
}

func TestNew(t *testing.T) {
	require := require.New(t)

	tbl := New(
		[]string{"frob"},
		[]string{"knob"},
		[]string{"LIMIT"},
		[]string{"unit"},
		[]string{"unit.knobs"},
	)

	require.True(tbl.IsFunction("frob"))
	require.True(tbl.IsProperty("knob"))
	require.True(tbl.IsConstant("LIMIT"))
	require.True(tbl.IsGroup("unit"))
	require.True(tbl.IsIndexed("unit.knobs"))
	require.False(tbl.IsFunction("knob"))
}
