package domain

// Request is one incoming call: a method name, positional params, and an
// optional wire-level correlation id.
type Request struct {
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
	ID     any    `json:"id,omitempty"`
}

// Response carries either a Result or an Error, never both.
type Response struct {
	Result any            `json:"result,omitempty"`
	Error  *ProtocolError `json:"error,omitempty"`
}

// ReturnHandler runs during the unwind of the pipeline, after every stage
// downstream of the one that registered it has finished — this is how a
// response-phase caveat such as filterResponse observes a result that a
// later (or asynchronous) stage has not yet produced when it calls next.
type ReturnHandler func()

// NextFunc advances the pipeline to the following stage. A stage may pass a
// ReturnHandler to run once the rest of the pipeline has finished, whether
// that happens synchronously or from another goroutine.
type NextFunc func(onReturn ...ReturnHandler)

// EndFunc terminates the pipeline immediately. A non-nil error becomes the
// response's error; afterwards no further stage runs and every previously
// registered ReturnHandler still fires, innermost first.
type EndFunc func(err *ProtocolError)

// MiddlewareFunc is the shape of every pipeline stage: a caveat-generated
// filter or a terminal restricted method.
type MiddlewareFunc func(req *Request, res *Response, next NextFunc, end EndFunc)

// RunPipeline executes stages in order around req/res and invokes onDone
// exactly once, whether the chain runs to completion or a stage calls end
// early. Terminal stages may be asynchronous: RunPipeline only requires
// that whichever stage is last in the chain eventually calls end.
func RunPipeline(stages []MiddlewareFunc, req *Request, res *Response, onDone func()) {
	idx := 0
	var returnHandlers []ReturnHandler
	finished := false

	var step func()

	finish := func(err *ProtocolError) {
		if finished {
			return
		}
		finished = true
		if err != nil {
			res.Error = err
		}
		for i := len(returnHandlers) - 1; i >= 0; i-- {
			returnHandlers[i]()
		}
		if onDone != nil {
			onDone()
		}
	}

	step = func() {
		if idx >= len(stages) {
			finish(nil)
			return
		}
		stage := stages[idx]
		idx++

		next := func(onReturn ...ReturnHandler) {
			if len(onReturn) > 0 {
				returnHandlers = append(returnHandlers, onReturn[0])
			}
			step()
		}
		end := func(err *ProtocolError) {
			finish(err)
		}
		stage(req, res, next, end)
	}

	step()
}
