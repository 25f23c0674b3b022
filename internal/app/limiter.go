package app

import "sync"

// StudentLimiter сериализует работу машины намерений по ученику: два почти
// одновременных сообщения об одном ребёнке не должны гоняться за одной
// «последней pending-записью».
type StudentLimiter struct {
	mu   sync.Mutex
	byID map[int64]*sync.Mutex
}

func NewStudentLimiter() *StudentLimiter {
	return &StudentLimiter{byID: make(map[int64]*sync.Mutex)}
}

func (l *StudentLimiter) Lock(studentID int64) func() {
	l.mu.Lock()
	m, ok := l.byID[studentID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[studentID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() { m.Unlock() }
}
