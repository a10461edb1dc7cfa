package services

import "log"

// postCommit collects side effects queued during a business operation and
// runs them only after the surrounding transaction has committed. Failures
// are captured here and logged; they never reach the caller.
type postCommit struct {
	fns []func()
}

func (p *postCommit) add(fn func()) { p.fns = append(p.fns, fn) }

func (p *postCommit) run() {
	for _, fn := range p.fns {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("post-commit hook panic: %v", rec)
				}
			}()
			fn()
		}()
	}
	p.fns = nil
}
