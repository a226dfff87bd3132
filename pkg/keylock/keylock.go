// Package keylock provides mutual exclusion scoped to a single key.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker хранит мьютекс на каждый ключ, пока он кому-то нужен.
// Операции с разными ключами не блокируют друг друга.
type Locker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

// New создает новый реестр блокировок
func New[K comparable]() *Locker[K] {
	return &Locker[K]{locks: make(map[K]*entry)}
}

// Lock захватывает блокировку ключа и возвращает функцию освобождения.
// Функцию освобождения нужно вызвать ровно один раз.
func (l *Locker[K]) Lock(key K) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len возвращает количество ключей, удерживаемых или ожидаемых в данный момент
func (l *Locker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
