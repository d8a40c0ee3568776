/*
Package koast is a client-side data-access SDK that treats remote REST
endpoints as typed, saveable objects while transparently attaching
authentication state to every request.

# Overview

The package is organized around three cooperating pieces:

  - Client: the resource access facade. It owns the endpoint registry,
    resolves URLs, attaches auth headers and materializes server rows.
  - User: the session state machine. It tracks authentication status, the
    user profile and session metadata, and is the only writer of that state.
  - Resource: a materialized copy of one server record, carrying Save and
    Delete behavior bound to the endpoint it came from.

Create a Client, register endpoints, then fetch:

	client := koast.NewClient(koast.Config{
		BaseURL:   "https://app.example.com",
		APIPrefix: "/api/",
		Strategy:  koast.StrategyLocal,
	})

	if err := client.AddEndpoint("tasks", "/:id"); err != nil {
		log.Fatal(err)
	}

	task, err := client.GetResource(ctx, "tasks", koast.Params{"id": 7})
	if err != nil {
		log.Fatal(err)
	}
	if task != nil && task.Can()["edit"] {
		task.Fields["title"] = "updated"
		_, err = task.Save(ctx)
	}

# Endpoints

An endpoint is a handle, a shared URL prefix and a path template with
":name" placeholders. Handles are immutable once registered; registering a
handle twice fails with *DuplicateEndpointError. Placeholder substitution
accepts numeric zero as a defined value, so {"id": 0} resolves; nil and the
empty string fail with *MissingParameterError.

# Session State

The session starts unknown. RequestStatus asks the server's "who am I"
endpoint at most once per process lifetime; concurrent callers share the
single in-flight query and observe the same result. How the response is
interpreted depends on the configured AuthStrategy:

  - StrategyFederated: the response carries isAuthenticated plus data/meta
    sub-objects.
  - StrategyLocal: the response is the user payload itself and counts as
    authenticated iff it has a non-empty username.

LoginLocal sets the session atomically on success and leaves it untouched
on failure. Logout requires the server's "Ok" acknowledgement, resets the
session and triggers the configured Navigator. InitiateAuthentication hands
the user off to an external identity provider and changes no local state;
the new session becomes visible when the provider sends the user back.

A registration handler attached with SetRegistrationHandler runs when a
status check finds an authenticated but unregistered user. It runs strictly
after the state transition is observable and before the status result
resolves, so observers of the transition never race the registration flow.

# Auth Headers

Every request derives its credential headers fresh from the current session
state: the auth token, the token's issuance timestamp, and a JSON snapshot
of the profile. Anonymous sessions send no auth headers.

# Singular Fetches

GetResource applies the singular reduction to the fetched list: zero rows
yield nil, one row yields that resource, and more than one logs a warning
and returns the first. Multiple rows for a singular fetch is a server-side
modeling problem, not a client error.

# Create Asymmetry

CreateResource returns the raw decoded response rather than a materialized
Resource. The asymmetry is inherited from the original design and preserved
deliberately; reconciling it is an open API question, not something the SDK
silently papers over.

# Errors

Registry and URL-building problems (*DuplicateEndpointError,
*UnknownEndpointError, *MissingParameterError) are programmer errors: they
fail immediately and are never retried. Failed network calls surface as
*TransportError carrying the server's error payload verbatim. The core
never retries; callers who want retries layer RetryTransport into their
http.Client, and callers who want pacing configure a rate limiter via
RateLimitConfig.

# Concurrency

All state is guarded; a single Client and its User may be shared freely
across goroutines. The only point that collapses concurrent work is the
status query memoization. In-flight requests honor context cancellation at
the transport level but are otherwise run to completion.
*/
package koast
