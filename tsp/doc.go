// Package tsp drives Keithley 2600-series source-measure units over their
// line-oriented TSP remote-command protocol.
//
// The instrument exposes a large, firmware-versioned hierarchical namespace
// of remote objects: channels, command groups, functions, and settable
// attributes. Instead of hand-written bindings for every command, the driver
// resolves arbitrary member access dynamically against static classification
// tables (see the tspcmd package):
//
//	smua, _ := inst.SMUA()
//	measure, _ := smua.Group("measure")
//	nplc, _ := measure.Get("nplc")          // print(smua.measure.nplc)
//	_ = measure.Set("nplc", 1.0)            // smua.measure.nplc = 1
//	v, _ := measure.Call("v")               // result = smua.measure.v(); print(result)
//
// Attribute reads become print queries, writes become assignment lines, and
// function calls use a store-then-query idiom because the protocol does not
// reliably return values from bare calls. Sub-groups, function proxies, and
// indexed lists are cached per name; scalar attribute reads always go to the
// instrument.
//
// On top of the namespace proxy, the package implements synchronized
// two-channel voltage sweeps using the instrument's hardware trigger model
// (VoltageSweep) and transfer/output curve measurements that drive repeated
// forward and reverse sweeps across a list of bias points
// (TransferMeasurement, OutputMeasurement). Sweeps capture into on-instrument
// buffers, completion is detected by polling the sweeping status condition
// register, and a cooperative AbortSignal cancels between sweeps; a running
// sweep always executes to completion.
//
// Transports for the raw-socket LAN interface (TCPTransport) and RS-232
// (SerialTransport) are included; any line-oriented link can be plugged in
// through the Transport interface.
package tsp
