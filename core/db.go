package core

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// MemoryDB keeps the latest copy of every scenario result. Jobs publish
// snapshots through DBChan; readers always get copies.
type MemoryDB struct {
	dbMap  map[string]*ScenarioResult
	dbChan <-chan Job
	done   chan struct{}
	mu     sync.RWMutex
}

func (d *MemoryDB) Setup(dbc DBChan, c *Conf) error {
	d.dbMap = make(map[string]*ScenarioResult)
	d.dbChan = dbc
	d.done = make(chan struct{})
	if dbc == nil {
		close(d.done)
		return nil
	}
	go func() {
		defer close(d.done)
		for job := range d.dbChan {
			zap.L().Debug(fmt.Sprintf("[MemoryDB] Received %s", job.Result().ID))
			if err := d.Update(job.Result()); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a scenario(%s). Reason:%s",
					job.Result().ID, err.Error()))
			}
		}
	}()
	return nil
}

// Wait blocks until DBChan is closed and drained.
func (d *MemoryDB) Wait() {
	<-d.done
}

func (d *MemoryDB) Insert(r *ScenarioResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[r.ID]; ok {
		return fmt.Errorf("%s is already stored", r.ID)
	}
	d.dbMap[r.ID] = r.Clone()
	return nil
}

func (d *MemoryDB) Get(id string) (*ScenarioResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if val, ok := d.dbMap[id]; ok {
		return val.Clone(), nil
	}
	err := fmt.Errorf("not found %s", id)
	zap.L().Info("[MemoryDB]", zap.Error(err))
	return nil, err
}

func (d *MemoryDB) Update(r *ScenarioResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[r.ID] = r.Clone()
	return nil
}

func (d *MemoryDB) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[id]; ok {
		delete(d.dbMap, id)
		zap.L().Info(fmt.Sprintf("[MemoryDB] deleted %s from DB", id))
		return nil
	}
	err := fmt.Errorf("failed to find %s", id)
	zap.L().Info("[MemoryDB]", zap.Error(err))
	return err
}

// List returns copies ordered by scenario index.
func (d *MemoryDB) List() []*ScenarioResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := make([]*ScenarioResult, 0, len(d.dbMap))
	for _, r := range d.dbMap {
		list = append(list, r.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Index != list[j].Index {
			return list[i].Index < list[j].Index
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// CountByStatus is used by the metrics log.
func (d *MemoryDB) CountByStatus() map[Status]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	counts := make(map[Status]int)
	for _, r := range d.dbMap {
		counts[r.Status]++
	}
	return counts
}
