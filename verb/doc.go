/*
Package verb descreve ações de entidades como endpoints HTTP e os publica num
roteador gorilla/mux.

Visão Geral:
Um recurso é uma struct cujos campos do tipo Action carregam a tag `verb`. A tag
define o método HTTP, o caminho e os status de resposta:

	verb:"get,path=/{id},onOk=200,onNotFound=404,onError=400,type=json"

Os descritores também podem ser registrados por código (Register), sem tag.

Mapeamento de respostas:
  - erro exception.DoesNotExist: status OnNotFound
  - erro validation.Results: status OnError com corpo {"error", "results"}
  - outros erros: status OnError
  - sucesso: status OnOk; 204 não escreve corpo; type=text e type=stream escrevem o valor bruto

Exemplos de Uso:

	type DevResource struct {
		ByID verb.Action `json:"byId" verb:"get,path=/{id}"`
	}

	res := DevResource{ByID: func(ctx context.Context, req verb.Request) (any, error) {
		return service.Get(ctx, req.Vars["id"])
	}}

	router := verb.NewRouter(verb.WithLogger(logger))
	if err := router.Mount("/devs", res); err != nil {
		log.Fatal(err)
	}
	http.ListenAndServe(":8080", router)
*/
package verb
