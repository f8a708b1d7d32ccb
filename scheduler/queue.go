package scheduler

import (
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/oqtopus-team/qec-bell/core"
)

const defaultQueueMaxSize = 1000

var ErrQueueFull = errors.New("normal queue is full")

type fifo interface {
	Enqueue(*jobInScheduler) error
	Dequeue() (*jobInScheduler, error)
	DequeueOrWaitForNextElement() (*jobInScheduler, error)
	Get(index int) (*jobInScheduler, error)
	GetLen() int
	Remove(index int) error
}

type conqFIFO struct {
	*conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(js *jobInScheduler) error {
	return c.FIFO.Enqueue(js)
}

func (c *conqFIFO) Dequeue() (*jobInScheduler, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElement() (*jobInScheduler, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElement()
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) Get(index int) (*jobInScheduler, error) {
	tmp, err := c.FIFO.Get(index)
	if err != nil {
		return nil, err
	}
	return tmp.(*jobInScheduler), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

func (c *conqFIFO) Remove(index int) error {
	return c.FIFO.Remove(index)
}

// NormalQueue holds scenario jobs waiting for a worker.
type NormalQueue struct {
	fifo    fifo
	maxSize int
}

func (n *NormalQueue) Setup(conf *core.Conf) error {
	n.maxSize = conf.QueueMaxSize
	if n.maxSize <= 0 {
		n.maxSize = defaultQueueMaxSize
	}
	n.fifo = newConqFIFO()
	return nil
}

func (n *NormalQueue) Enqueue(jis *jobInScheduler) error {
	id := jis.job.Result().ID
	if n.maxSize <= n.fifo.GetLen() {
		zap.L().Info(fmt.Sprintf("Failed to put %s. Normal Queue is full.", id))
		return errors.Wrapf(ErrQueueFull, "max size %d", n.maxSize)
	}
	zap.L().Debug(fmt.Sprintf("Putting %s to normalQueue", id))
	if err := n.fifo.Enqueue(jis); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to put %s to normalQueue. Reason:%s", id, err))
		return err
	}
	return nil
}

// enqueueStop wakes one worker up and makes it return. It ignores maxSize.
func (n *NormalQueue) enqueueStop() error {
	return n.fifo.Enqueue(&jobInScheduler{})
}

// Dequeue blocks until the next element is enqueued when wait is true.
func (n *NormalQueue) Dequeue(wait bool) (jis *jobInScheduler, err error) {
	if wait {
		jis, err = n.fifo.DequeueOrWaitForNextElement()
	} else {
		jis, err = n.fifo.Dequeue()
	}
	if err != nil {
		zap.L().Debug("no job in NormalQueue.", zap.Error(err))
		return nil, err
	}
	if jis.job != nil {
		zap.L().Debug(fmt.Sprintf("Dequeued job:%s", jis.job.Result().ID))
	}
	return jis, nil
}

func (n *NormalQueue) Delete(id string) error {
	zap.L().Debug(fmt.Sprintf("deleting %s from normalQueue", id))
	idx, err := n.getIdx(id)
	if err != nil {
		zap.L().Info(fmt.Sprintf("Failed to Delete %s. Reason:%s", id, err))
		return err
	}
	if err := n.fifo.Remove(idx); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to remove idx:%d. Reason:%s", idx, err))
		return err
	}
	return nil
}

func (n *NormalQueue) GetCurrentSize() int {
	return n.fifo.GetLen()
}

func (n *NormalQueue) getIdx(id string) (int, error) {
	for i := 0; i < n.fifo.GetLen(); i++ {
		js, err := n.fifo.Get(i)
		if err == nil && js.job != nil && js.job.Result().ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no entry")
}
