package router

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/patric-chuzhbe/userapp/internal/db/memorystorage"
	"github.com/patric-chuzhbe/userapp/internal/models"
	"github.com/patric-chuzhbe/userapp/internal/service"
)

func setupExampleServer() *httptest.Server {
	db, err := memorystorage.NewWithUsers(
		models.User{ID: 1, Forename: "bob", Surname: "lee", Age: 22},
	)
	if err != nil {
		panic(err)
	}

	return httptest.NewServer(New(service.New(db)))
}

func ExampleRouter_GetUser() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/user/1")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println(string(body))

	// Output:
	// Status Code: 200
	// {"id":1,"forename":"bob","surname":"lee","age":22}
}

func ExampleRouter_PostUser() {
	server := setupExampleServer()
	defer server.Close()

	resp, err := http.Post(
		server.URL+"/user",
		"application/json",
		strings.NewReader(`{"forename":"Janet","surname":"Carlisle","age":32}`),
	)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Location:", resp.Header.Get("Location"))
	fmt.Println(string(body))

	// Output:
	// Status Code: 201
	// Location: /user/2
	// {"id":2,"forename":"Janet","surname":"Carlisle","age":32}
}

func ExampleRouter_DeleteUser() {
	server := setupExampleServer()
	defer server.Close()

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodDelete, server.URL+"/user/1", nil)
		if err != nil {
			panic(err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			panic(err)
		}
		resp.Body.Close()

		fmt.Println("Status Code:", resp.StatusCode)
	}

	// Output:
	// Status Code: 202
	// Status Code: 404
}
