// Package exception define erros de domínio comparáveis por ID.
//
// O ID é derivado da mensagem em PascalCase, de modo que New("Does not exist")
// e DoesNotExist são a mesma exceção para Equals, IsException e errors.Is.
// O router HTTP traduz DoesNotExist para o status OnNotFound do verbo.
package exception
