package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNaoEncontrado          = errors.New("recurso não encontrado")
	ErrEntradaInvalida        = errors.New("entrada inválida")
	ErrDuplicado              = errors.New("recurso duplicado")
	ErrJaDevolvido            = errors.New("item já totalmente devolvido")
	ErrEnvioEmAndamento       = errors.New("envio já em andamento")
	ErrSessaoEncerrada        = errors.New("sessão já encerrada")
	ErrClienteNaoSelecionado  = errors.New("nenhum cliente selecionado")
	ErrRemessaNaoSelecionada  = errors.New("nenhuma remessa selecionada")
	ErrCarrinhoVazio          = errors.New("nenhum item na lista")
)
