// Package debounce implementa o atraso de busca usado pelos fluxos do balcão:
// cada nova digitação substitui o timer pendente e só a última chamada dentro
// da janela dispara de fato a função.
//
// A troca de timer é a única forma de cancelamento: uma função já disparada
// não é abortada. Se a latência de rede exceder a janela, duas respostas podem
// chegar fora de ordem; esse comportamento é conhecido e mantido.
package debounce

import (
	"sync"
	"time"
)

// Debouncer agenda a execução de uma função após um intervalo fixo,
// descartando agendamentos anteriores ainda pendentes.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// New cria um Debouncer com o intervalo dado.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do agenda fn para rodar após o intervalo; cancela qualquer agendamento
// pendente anterior. fn roda em goroutine própria (timer da stdlib).
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancela o agendamento pendente, se houver.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
