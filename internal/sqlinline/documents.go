package sqlinline

const QSelectDocument = `--sql 9c1e4a7d-2b6f-4f30-8e85-5d3a1b7c9e02
select body::text from documents where name = $1::text;
`

const QUpsertDocument = `--sql b47d2e91-6c3a-4d58-a0f2-7e1c9b3d5a68
insert into documents (name, body, updated_at)
values ($1::text, $2::jsonb, now())
on conflict (name) do update set
    body = excluded.body,
    updated_at = now();
`
