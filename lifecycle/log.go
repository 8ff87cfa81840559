package lifecycle

import "github.com/taskqueue-go/jobqueue/l3"

var logger = l3.Get()
