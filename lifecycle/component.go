package lifecycle

import (
	"errors"
	"time"
)

type ComponentState int

const (
	// Unknown is the state of the component when it is not known.
	Unknown ComponentState = iota
	// Error is the state of the component when it is in error.
	Error
	// Stopped is the state of the component when it is stopped.
	Stopped
	//Stopping is the state of the component when it is stopping.
	Stopping
	// Running is the state of the component when it is running.
	Running
	// Starting is the state of the component when it is starting.
	Starting
)

var ErrCompNotFound = errors.New("component not found")

var ErrCompAlreadyStarted = errors.New("component already started")

var ErrCompAlreadyStopped = errors.New("component already stopped")

var ErrInvalidComponentState = errors.New("invalid component state")

var ErrCyclicDependency = errors.New("cyclic dependency detected")

var ErrTimeout = errors.New("operation timed out")

// Component is the interface that wraps the basic Start and Stop methods.
type Component interface {
	// Id is the unique identifier for the component.
	Id() string
	// OnChange registers f to be called whenever the component's state
	// changes.
	OnChange(f func(prevState, newState ComponentState))
	// Start will starting the LifeCycle.
	Start() error
	// Stop will stop the LifeCycle.
	Stop() error
	// State will return the current state of the LifeCycle.
	State() ComponentState
}

// ComponentManager is the interface that manages multiple components.
type ComponentManager interface {
	// GetState will return the current state of the LifeCycle for the component with the given id.
	GetState(id string) ComponentState
	//List will return a list of all the Components.
	List() []Component
	// Register will register a new Components.
	Register(component Component) Component
	// AddDependency will add a dependency between the two components.
	AddDependency(id, dependsOn string) error
	// StartAll will start all the Components. Returns an aggregate error if
	// any component failed to start.
	StartAll() error
	//StartAndWait will start all the Components and wait for them to finish.
	StartAndWait()
	// Start will start the LifeCycle for the component with the given id.
	// It returns an error if the component was not found or if the component failed to start.
	Start(id string) error
	// StartWithTimeout starts the component with the given id, returning
	// ErrTimeout if Start does not return within timeout. A timed-out
	// Start is not cancelled; it keeps running and its eventual result is
	// discarded.
	StartWithTimeout(id string, timeout time.Duration) error
	// StartAllWithTimeout starts every component, returning ErrTimeout if
	// StartAll does not return within timeout.
	StartAllWithTimeout(timeout time.Duration) error
	// StopAll will stop all the Components. Returns an aggregate error if
	// any component failed to stop.
	StopAll() error
	// Stop will stop the LifeCycle for the component with the given id.
	// It returns an error if the component was not found, if a dependency failed to stop or if the component failed to stop.
	Stop(id string) error
	// StopWithTimeout stops the component with the given id, returning
	// ErrTimeout if Stop does not return within timeout.
	StopWithTimeout(id string, timeout time.Duration) error
	// StopAllWithTimeout stops every component, returning ErrTimeout if
	// StopAll does not return within timeout.
	StopAllWithTimeout(timeout time.Duration) error
	// Unregister will unregister a Component.
	Unregister(id string)
	// Wait will wait for all the Components to finish.
	Wait()
}
