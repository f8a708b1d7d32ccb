package core

import (
	"fmt"
	"sync"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var (
	systemComponents *SystemComponents
)

type DBChan chan Job

type Channels struct {
	DBChan
	closeOnce sync.Once
}

func NewChannels() *Channels {
	return &Channels{
		DBChan: make(DBChan),
	}
}

func (c *Channels) Close() {
	c.closeOnce.Do(func() { close(c.DBChan) })
}

func (c *Channels) Check() error {
	if c.DBChan == nil {
		return fmt.Errorf("DBChan is nil")
	}
	return nil
}

type Scheduler interface {
	Setup(*Conf) error
	Start() error
	// HandleJob drives j through its lifecycle and calls wg.Done when it is
	// finished. wg may be nil.
	HandleJob(j Job, wg *sync.WaitGroup)
	Stop()
	// Queue Data Access
	GetCurrentQueueSize() int
}

type DBManager interface {
	Setup(DBChan, *Conf) error
	Insert(*ScenarioResult) error
	Get(string) (*ScenarioResult, error)
	Update(*ScenarioResult) error
	Delete(string) error
	List() []*ScenarioResult
	CountByStatus() map[Status]int
	Wait()
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	dbChan := s.DBChan

	zap.L().Debug("Setting up scheduler")
	err := s.Invoke(
		func(s Scheduler) error {
			return s.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up DB")
	err = s.Invoke(
		func(d DBManager) error {
			return d.Setup(dbChan, conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

// TearDown stops the workers, closes the channels and waits for the DB to
// drain them.
func (s *SystemComponents) TearDown() {
	_ = s.Invoke(
		func(sc Scheduler) {
			sc.Stop()
		})
	s.Channels.Close()
	_ = s.Invoke(
		func(d DBManager) {
			d.Wait()
		})
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(s Scheduler) error {
			return s.Start()
		})
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	_ = s.Invoke(
		func(sc Scheduler) {
			size = sc.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) CountResultsByStatus() map[Status]int {
	counts := map[Status]int{}
	_ = s.Invoke(
		func(d DBManager) {
			counts = d.CountByStatus()
		})
	return counts
}
