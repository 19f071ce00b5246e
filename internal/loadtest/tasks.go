package loadtest

import (
	"fmt"
	"math/rand"
)

// Task is one weighted user action.
type Task struct {
	Name   string
	Weight int
	Run    func(c *Client, rnd *rand.Rand) error
}

// DefaultTasks mirrors the traffic mix of a browsing shop assistant: mostly
// reads, some writes and the occasional delete.
func DefaultTasks() []Task {
	return []Task{
		{Name: "list products", Weight: 5, Run: listProducts},
		{Name: "create product", Weight: 3, Run: createProduct},
		{Name: "update stock", Weight: 2, Run: updateStock},
		{Name: "delete product", Weight: 1, Run: deleteProduct},
		{Name: "health check", Weight: 1, Run: func(c *Client, _ *rand.Rand) error { return c.Health() }},
	}
}

func listProducts(c *Client, rnd *rand.Rand) error {
	return c.List(rnd.Intn(5)+1, 10)
}

func createProduct(c *Client, rnd *rand.Rand) error {
	_, err := createRandom(c, rnd)
	return err
}

func updateStock(c *Client, rnd *rand.Rand) error {
	id, err := createRandom(c, rnd)
	if err != nil {
		return err
	}
	return c.UpdateStock(id, rnd.Intn(201))
}

func deleteProduct(c *Client, rnd *rand.Rand) error {
	id, err := createRandom(c, rnd)
	if err != nil {
		return err
	}
	return c.Delete(id)
}

func createRandom(c *Client, rnd *rand.Rand) (uint, error) {
	name := fmt.Sprintf("Producto %d", rnd.Intn(1000)+1)
	price := float64(rnd.Intn(99000)+1000) / 100
	return c.Create(name, price, rnd.Intn(101))
}

// picker chooses tasks with probability proportional to their weight.
type picker struct {
	tasks []Task
	total int
}

func newPicker(tasks []Task) (*picker, error) {
	p := &picker{}
	for _, t := range tasks {
		if t.Weight <= 0 {
			continue
		}
		p.tasks = append(p.tasks, t)
		p.total += t.Weight
	}
	if p.total == 0 {
		return nil, fmt.Errorf("no task with a positive weight")
	}
	return p, nil
}

func (p *picker) pick(rnd *rand.Rand) Task {
	n := rnd.Intn(p.total)
	for _, t := range p.tasks {
		if n < t.Weight {
			return t
		}
		n -= t.Weight
	}
	return p.tasks[len(p.tasks)-1]
}
