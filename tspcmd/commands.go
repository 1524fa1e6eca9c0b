package tspcmd

// Name lists for the 2600-series TSP command namespace, following the
// command reference. The lists cover the commands the driver itself uses
// plus the commonly scripted remainder of the namespace; they are not a
// complete transcription of the reference manual.

var defaultFunctions = []string{
	"abort",
	"beep",
	"clear",
	"clearcache",
	"gettimezone",
	"i",
	"initiate",
	"iv",
	"linearv",
	"lineari",
	"logv",
	"logi",
	"makebuffer",
	"measurecomplete",
	"opc",
	"p",
	"r",
	"recall",
	"reset",
	"save",
	"savebuffer",
	"settimezone",
	"v",
	"waitcomplete",
}

var defaultProperties = []string{
	"action",
	"appendmode",
	"autorangei",
	"autorangev",
	"autozero",
	"cachemode",
	"collectsourcevalues",
	"collecttimestamps",
	"condition",
	"count",
	"delay",
	"enable",
	"func",
	"highc",
	"interval",
	"leveli",
	"levelv",
	"limiti",
	"limitv",
	"linefreq",
	"n",
	"nplc",
	"offmode",
	"orenable",
	"output",
	"rangei",
	"rangev",
	"sense",
	"stimulus",
}

var defaultConstants = []string{
	"ARMED_EVENT_ID",
	"AUTORANGE_OFF",
	"AUTORANGE_ON",
	"DISABLE",
	"ENABLE",
	"EVENT_ID",
	"IDLE_EVENT_ID",
	"MEASURE_COMPLETE_EVENT_ID",
	"MEASURE_DCAMPS",
	"MEASURE_DCVOLTS",
	"MEASURE_OHMS",
	"MEASURE_WATTS",
	"OUTPUT_DCAMPS",
	"OUTPUT_DCVOLTS",
	"OUTPUT_OFF",
	"OUTPUT_ON",
	"OUTPUT_HIGH_Z",
	"PULSE_COMPLETE_EVENT_ID",
	"SENSE_LOCAL",
	"SENSE_REMOTE",
	"SOURCE_COMPLETE_EVENT_ID",
	"SOURCE_HOLD",
	"SOURCE_IDLE",
	"SWEEP_COMPLETE_EVENT_ID",
	"SWEEPING_EVENT_ID",
}

var defaultGroups = []string{
	"arm",
	"beeper",
	"blender",
	"buffer",
	"display",
	"endpulse",
	"endsweep",
	"errorqueue",
	"eventlog",
	"localnode",
	"measure",
	"nvbuffer1",
	"nvbuffer2",
	"operation",
	"smua",
	"smub",
	"source",
	"status",
	"sweeping",
	"timer",
	"trigger",
}

// defaultIndexed lists full dotted paths, bracket indices stripped, of
// element-addressable attribute lists.
var defaultIndexed = []string{
	"trigger.blender.stimulus",
	"trigger.timer.stimulus",
}
